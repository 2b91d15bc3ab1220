// Package listener holds the event bus consumers that turn committed
// domain events into broadcast frames. Each listener runs on its own
// supervised worker; enrichment lookups happen here, off the request
// path.
package listener

import (
	"context"
	"fmt"
	"log/slog"

	"roomchat/broadcast"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/linkpreview"
	"roomchat/repositories"
)

// MessageAddedListener pushes new, edited and deleted messages to the
// room's public topic, enriched with the author's profile image, and
// kicks off link preview generation for fresh content.
type MessageAddedListener struct {
	log           *slog.Logger
	users         repositories.IUserRepository
	gateway       contract.Gateway
	previews      *linkpreview.Service
	profilePrefix string
}

func NewMessageAddedListener(log *slog.Logger, users repositories.IUserRepository,
	gateway contract.Gateway, previews *linkpreview.Service, profilePrefix string) *MessageAddedListener {
	return &MessageAddedListener{
		log:           log,
		users:         users,
		gateway:       gateway,
		previews:      previews,
		profilePrefix: profilePrefix,
	}
}

func (l *MessageAddedListener) Handle(ctx context.Context, evt event.DomainEvent) error {
	added, ok := evt.(event.MessageAdded)
	if !ok {
		return nil
	}

	payload := broadcast.MessagePayload(added.Message, l.resolveProfileImage(ctx, added.Message.AuthorID))
	if err := l.gateway.Publish(ctx, broadcast.RoomPublicTopic(added.Room), payload); err != nil {
		return fmt.Errorf("publishing message %d: %w", added.Message.ID, err)
	}
	l.log.Info(fmt.Sprintf("Message %d sent to %s", added.Message.ID, broadcast.RoomPublicTopic(added.Room)))

	// Synthetic retractions carry no content worth previewing.
	if l.previews != nil && added.Message.Kind != domain.KindDelete {
		if url := linkpreview.FindFirstURL(added.Message.Content); url != "" {
			l.previews.GenerateAndSend(ctx, added.Message.ID, added.Room, url)
		}
	}
	return nil
}

// resolveProfileImage falls back to the default avatar when the author
// is gone or has no image; a missing profile never blocks delivery.
func (l *MessageAddedListener) resolveProfileImage(ctx context.Context, authorID domain.UserID) string {
	profile, err := l.users.FindByID(ctx, authorID)
	if err != nil {
		return broadcast.ProfileImage(l.profilePrefix, "")
	}
	return broadcast.ProfileImage(l.profilePrefix, profile.ProfileImageURL)
}
