package listener

import (
	"context"
	"fmt"
	"log/slog"

	"roomchat/broadcast"
	"roomchat/contract"
	"roomchat/domain/event"
)

// UserEnteredListener announces arrivals on the room's users topic.
type UserEnteredListener struct {
	log           *slog.Logger
	gateway       contract.Gateway
	profilePrefix string
}

func NewUserEnteredListener(log *slog.Logger, gateway contract.Gateway, profilePrefix string) *UserEnteredListener {
	return &UserEnteredListener{log: log, gateway: gateway, profilePrefix: profilePrefix}
}

func (l *UserEnteredListener) Handle(ctx context.Context, evt event.DomainEvent) error {
	entered, ok := evt.(event.UserEntered)
	if !ok {
		return nil
	}
	payload := broadcast.UserEventPayload{
		Event:           broadcast.UserEventEnter,
		UserID:          entered.User.ID,
		Nickname:        entered.User.Nickname,
		Role:            entered.Role,
		ProfileImageURL: broadcast.ProfileImage(l.profilePrefix, entered.User.ProfileImageURL),
	}
	if err := l.gateway.Publish(ctx, broadcast.RoomUsersTopic(entered.Room), payload); err != nil {
		return fmt.Errorf("publishing ENTER for user %d: %w", entered.User.ID, err)
	}
	l.log.Info(fmt.Sprintf("User ENTER event sent to %s (user: %d)", broadcast.RoomUsersTopic(entered.Room), entered.User.ID))
	return nil
}

// UserExitedListener announces departures; the event kind mirrors the
// exit reason (LEFT, KICKED, ROOM_DELETED).
type UserExitedListener struct {
	log     *slog.Logger
	gateway contract.Gateway
}

func NewUserExitedListener(log *slog.Logger, gateway contract.Gateway) *UserExitedListener {
	return &UserExitedListener{log: log, gateway: gateway}
}

func (l *UserExitedListener) Handle(ctx context.Context, evt event.DomainEvent) error {
	exited, ok := evt.(event.UserExited)
	if !ok {
		return nil
	}
	payload := broadcast.UserEventPayload{
		Event:  exitEventKind(exited.Reason),
		UserID: exited.UserID,
	}
	if err := l.gateway.Publish(ctx, broadcast.RoomUsersTopic(exited.Room), payload); err != nil {
		return fmt.Errorf("publishing %s for user %d: %w", exited.Reason, exited.UserID, err)
	}
	l.log.Info(fmt.Sprintf("User %s event sent to %s (user: %d)", exited.Reason, broadcast.RoomUsersTopic(exited.Room), exited.UserID))
	return nil
}

func exitEventKind(reason event.ExitReason) broadcast.UserEventKind {
	switch reason {
	case event.ReasonKicked:
		return broadcast.UserEventKicked
	case event.ReasonRoomDeleted:
		return broadcast.UserEventRoomDeleted
	default:
		return broadcast.UserEventLeft
	}
}

// NicknameChangedListener announces per-room nickname changes.
type NicknameChangedListener struct {
	log     *slog.Logger
	gateway contract.Gateway
}

func NewNicknameChangedListener(log *slog.Logger, gateway contract.Gateway) *NicknameChangedListener {
	return &NicknameChangedListener{log: log, gateway: gateway}
}

func (l *NicknameChangedListener) Handle(ctx context.Context, evt event.DomainEvent) error {
	changed, ok := evt.(event.NicknameChanged)
	if !ok {
		return nil
	}
	payload := broadcast.UserEventPayload{
		Event:    broadcast.UserEventNickChange,
		UserID:   changed.UserID,
		Nickname: changed.NewNickname,
	}
	if err := l.gateway.Publish(ctx, broadcast.RoomUsersTopic(changed.Room), payload); err != nil {
		return fmt.Errorf("publishing NICK_CHANGE for user %d: %w", changed.UserID, err)
	}
	return nil
}
