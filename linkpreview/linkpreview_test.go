package linkpreview

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roomchat/broadcast"
	"roomchat/errors"
	"roomchat/mocks"
)

func TestFindFirstURL(t *testing.T) {
	req := require.New(t)

	req.Equal("https://example.com/page", FindFirstURL("check https://example.com/page out"))
	req.Equal("http://a.io", FindFirstURL("http://a.io then https://b.io"))
	req.Empty(FindFirstURL("no links here"))
	req.Empty(FindFirstURL("ftp://old.example.com/file"))
	// Trailing punctuation outside the URL charset is not captured
	req.Equal("https://example.com", FindFirstURL(`see <https://example.com>`))
}

func TestService_GenerateAndSend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	log := slog.Default()

	t.Run("should publish the card on the room previews topic", func(t *testing.T) {
		req := require.New(t)
		fetcher := mocks.NewMockFetcher(ctrl)
		gateway := mocks.NewMockGateway(ctrl)
		svc := NewService(log, fetcher, gateway)

		fetcher.EXPECT().Fetch(ctx, "https://example.com").
			Return("Example", "An example page", "https://example.com/og.png", nil)
		gateway.EXPECT().
			Publish(ctx, broadcast.RoomPreviewsTopic(7), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, payload any) error {
				card := payload.(Preview)
				req.Equal("Example", card.Title)
				req.Equal("An example page", card.Description)
				req.Equal("https://example.com/og.png", card.ImageURL)
				return nil
			})

		svc.GenerateAndSend(ctx, 41, 7, "https://example.com")
	})

	t.Run("should drop the preview when the fetch fails", func(t *testing.T) {
		fetcher := mocks.NewMockFetcher(ctrl)
		gateway := mocks.NewMockGateway(ctrl)
		svc := NewService(log, fetcher, gateway)

		fetcher.EXPECT().Fetch(ctx, "https://dead.example.com").
			Return("", "", "", errors.TransientIO("fetch failed", nil))
		gateway.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		svc.GenerateAndSend(ctx, 41, 7, "https://dead.example.com")
	})

	t.Run("should be a no-op without a fetcher", func(t *testing.T) {
		gateway := mocks.NewMockGateway(ctrl)
		svc := NewService(log, nil, gateway)

		gateway.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		svc.GenerateAndSend(ctx, 41, 7, "https://example.com")
	})
}
