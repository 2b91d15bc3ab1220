package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodePredicates(t *testing.T) {
	req := require.New(t)

	req.True(IsNotFound(NotFound("room not found")))
	req.True(IsForbidden(Forbidden("not a member")))
	req.True(IsConflict(Conflict("already invited")))
	req.True(IsValidation(Validation("bad visibility")))
	req.True(IsTransientIO(TransientIO("db down", nil)))

	req.False(IsNotFound(Forbidden("not a member")))
	req.False(IsNotFound(nil))
	req.False(IsNotFound(stderrors.New("plain error")))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	req := require.New(t)

	wrapped := fmt.Errorf("saving room: %w", TransientIO("db down", stderrors.New("disk full")))

	req.True(IsTransientIO(wrapped))
	req.False(IsNotFound(wrapped))
}

func TestErrorStringIncludesCause(t *testing.T) {
	req := require.New(t)

	cause := stderrors.New("disk full")
	err := TransientIO("saving message", cause)

	req.Contains(err.Error(), "TRANSIENT_IO")
	req.Contains(err.Error(), "disk full")
	req.ErrorIs(err, cause)
}

func TestIsMatchesByCodeOnly(t *testing.T) {
	req := require.New(t)

	req.ErrorIs(NotFound("room 7"), NotFound(""))
	req.NotErrorIs(NotFound("room 7"), Forbidden(""))
}
