package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"

	"roomchat/broadcast"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/errors"
	"roomchat/linkpreview"
	"roomchat/observability"
	"roomchat/repositories"
)

// FileStore is the external collaborator keeping uploaded chat files;
// it returns the stored name used to build download links.
type FileStore interface {
	Save(ctx context.Context, originalName string, content []byte) (storedName string, err error)
}

// MessageService owns the message lifecycle: send, edit, delete, file
// uploads and cursor-paginated history.
type MessageService struct {
	log           *slog.Logger
	messages      repositories.IMessageRepository
	roomUsers     repositories.IRoomUserRepository
	users         repositories.IUserRepository
	rooms         repositories.IRoomRepository
	bus           contract.Bus
	notifications *NotificationService
	previews      *linkpreview.Service
	files         FileStore
	metrics       *observability.Metrics
	profilePrefix string
}

func NewMessageService(log *slog.Logger, messages repositories.IMessageRepository,
	roomUsers repositories.IRoomUserRepository, users repositories.IUserRepository,
	rooms repositories.IRoomRepository, bus contract.Bus,
	notifications *NotificationService, previews *linkpreview.Service,
	files FileStore, metrics *observability.Metrics, profilePrefix string) *MessageService {
	return &MessageService{
		log:           log,
		messages:      messages,
		roomUsers:     roomUsers,
		users:         users,
		rooms:         rooms,
		bus:           bus,
		notifications: notifications,
		previews:      previews,
		files:         files,
		metrics:       metrics,
		profilePrefix: profilePrefix,
	}
}

// SendMessage resolves the author's room nickname, persists the message
// and publishes MessageAdded. Mentioned users get a notification on
// their private channel; unknown ids and self-mentions are skipped.
func (s *MessageService) SendMessage(ctx context.Context, cmd SendMessageCommand) (domain.Message, error) {
	if err := checkCommand(cmd); err != nil {
		return domain.Message{}, err
	}

	nickname, err := s.roomUsers.GetNickname(ctx, cmd.RoomID, cmd.AuthorID)
	if errors.IsNotFound(err) {
		return domain.Message{}, errors.Forbidden("not a member of this room")
	}
	if err != nil {
		return domain.Message{}, err
	}

	saved, err := s.messages.Save(ctx, domain.Message{
		RoomID:     cmd.RoomID,
		AuthorID:   cmd.AuthorID,
		AuthorName: nickname,
		Content:    cmd.Content,
		Kind:       cmd.Kind,
		ParentID:   cmd.ParentID,
	})
	if err != nil {
		return domain.Message{}, err
	}

	s.bus.Publish(event.MessageAdded{Message: saved, Room: cmd.RoomID})
	if s.metrics != nil {
		s.metrics.IncrMessagesSent()
	}

	if len(cmd.MentionedIDs) > 0 {
		s.notifyMentions(ctx, saved, cmd.MentionedIDs)
	}
	return saved, nil
}

func (s *MessageService) notifyMentions(ctx context.Context, msg domain.Message, mentionedIDs []domain.UserID) {
	room, err := s.rooms.FindByID(ctx, msg.RoomID)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Mention fan-out skipped, room %d lookup failed: %v", msg.RoomID, err))
		return
	}

	for _, mentionedID := range lo.Uniq(mentionedIDs) {
		if mentionedID == msg.AuthorID {
			continue
		}
		if _, err := s.users.FindByID(ctx, mentionedID); err != nil {
			// Unknown mentioned user: skip, do not fail the send.
			continue
		}
		_, err := s.notifications.Notify(ctx, domain.Notification{
			UserID:    mentionedID,
			Type:      domain.NotificationMention,
			Content:   fmt.Sprintf("%s mentioned you in the room '%s'", msg.AuthorName, room.Name),
			RelatedID: int64(room.ID),
		})
		if err != nil {
			s.log.Warn(fmt.Sprintf("Mention notification failed for user %d: %v", mentionedID, err))
		}
	}
}

// EditMessage updates content in place and flips the kind to UPDATE so
// clients replace the message by id. Author or room ADMIN only. Blank
// or unchanged content is a no-op.
func (s *MessageService) EditMessage(ctx context.Context, messageID domain.MessageID, userID domain.UserID, newContent string) error {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, msg, userID, "edit"); err != nil {
		return err
	}

	if strings.TrimSpace(newContent) == "" || newContent == msg.Content {
		return nil
	}

	msg.Content = newContent
	msg.Kind = domain.KindUpdate
	if err := s.messages.Update(ctx, msg); err != nil {
		return err
	}

	s.bus.Publish(event.MessageAdded{Message: msg, Room: msg.RoomID})
	s.log.Info(fmt.Sprintf("Message %d edited by user %d", messageID, userID))
	return nil
}

// DeleteMessage removes the row and publishes a synthetic DELETE frame
// carrying the original id so clients can retract it.
func (s *MessageService) DeleteMessage(ctx context.Context, messageID domain.MessageID, userID domain.UserID) error {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, msg, userID, "delete"); err != nil {
		return err
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}

	tombstone := domain.Message{ID: messageID, RoomID: msg.RoomID, Kind: domain.KindDelete}
	s.bus.Publish(event.MessageAdded{Message: tombstone, Room: msg.RoomID})
	s.log.Info(fmt.Sprintf("Message %d deleted by user %d", messageID, userID))
	return nil
}

func (s *MessageService) authorize(ctx context.Context, msg domain.Message, userID domain.UserID, action string) error {
	role, err := s.roomUsers.GetRole(ctx, msg.RoomID, userID)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	isAdmin := role == domain.RoleAdmin
	isAuthor := msg.AuthorID == userID
	if !isAdmin && !isAuthor {
		return errors.Forbidden(fmt.Sprintf("no permission to %s this message", action))
	}
	return nil
}

// UploadChatFile stores the file, classifies it by content type and
// posts a file message whose content links the original and stored
// names ("original:stored").
func (s *MessageService) UploadChatFile(ctx context.Context, roomID domain.RoomID, userID domain.UserID, originalName string, content []byte) (domain.Message, error) {
	if s.files == nil {
		return domain.Message{}, errors.Validation("file uploads are not configured")
	}
	nickname, err := s.roomUsers.GetNickname(ctx, roomID, userID)
	if errors.IsNotFound(err) {
		return domain.Message{}, errors.Forbidden("not a member of this room")
	}
	if err != nil {
		return domain.Message{}, err
	}

	storedName, err := s.files.Save(ctx, originalName, content)
	if err != nil {
		return domain.Message{}, errors.TransientIO("storing chat file", err)
	}

	saved, err := s.messages.Save(ctx, domain.Message{
		RoomID:     roomID,
		AuthorID:   userID,
		AuthorName: nickname,
		Content:    originalName + ":" + storedName,
		Kind:       classifyFileKind(content),
	})
	if err != nil {
		return domain.Message{}, err
	}

	s.bus.Publish(event.MessageAdded{Message: saved, Room: roomID})
	if s.metrics != nil {
		s.metrics.IncrMessagesSent()
	}
	return saved, nil
}

func classifyFileKind(content []byte) domain.MessageKind {
	kind := mimetype.Detect(content)
	switch {
	case strings.HasPrefix(kind.String(), "image/"):
		return domain.KindImage
	case strings.HasPrefix(kind.String(), "video/"):
		return domain.KindVideo
	default:
		return domain.KindFile
	}
}

// GetMessageHistory pages backwards through a room's messages. A nil
// cursor returns the most recent rows; otherwise rows strictly older
// than the cursor id. Results come back in chronological order,
// enriched with author profile images, and link previews are requested
// for any URLs found.
func (s *MessageService) GetMessageHistory(ctx context.Context, query HistoryQuery) ([]broadcast.ChatMessagePayload, error) {
	if err := checkCommand(query); err != nil {
		return nil, err
	}

	messages, err := s.messages.FindByCursor(ctx, query.RoomID, query.BeginID, query.RowCount)
	if err != nil {
		return nil, err
	}

	payloads := mapMessagesToPayloads(ctx, s.users, s.profilePrefix, messages)

	if s.previews != nil {
		for _, p := range payloads {
			if url := linkpreview.FindFirstURL(p.Content); url != "" {
				go s.previews.GenerateAndSend(context.WithoutCancel(ctx), p.MessageID, query.RoomID, url)
			}
		}
	}
	return payloads, nil
}

// mapMessagesToPayloads resolves each author's profile image, falling
// back to the default avatar for vanished users.
func mapMessagesToPayloads(ctx context.Context, users repositories.IUserRepository,
	profilePrefix string, messages []domain.Message) []broadcast.ChatMessagePayload {
	return lo.Map(messages, func(msg domain.Message, _ int) broadcast.ChatMessagePayload {
		image := ""
		if profile, err := users.FindByID(ctx, msg.AuthorID); err == nil {
			image = profile.ProfileImageURL
		}
		return broadcast.MessagePayload(msg, broadcast.ProfileImage(profilePrefix, image))
	})
}
