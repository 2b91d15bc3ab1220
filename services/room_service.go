package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"roomchat/auth"
	"roomchat/broadcast"
	"roomchat/contract"
	"roomchat/domain"
	"roomchat/domain/event"
	"roomchat/errors"
	"roomchat/repositories"
)

// RoomInitData is the snapshot a client needs when opening a room:
// member list with live connectivity, recent enriched messages and the
// room name.
type RoomInitData struct {
	Users    []domain.RoomUser
	Messages []broadcast.ChatMessagePayload
	RoomName string
}

// RoomService owns the room membership state machine:
// NONE -> MEMBER -> NONE (exit/kick), with the distinguished
// NONE -> ADMIN transition at creation only. An ADMIN never leaves
// except through whole-room deletion.
type RoomService struct {
	log           *slog.Logger
	rooms         repositories.IRoomRepository
	roomUsers     repositories.IRoomUserRepository
	users         repositories.IUserRepository
	messages      repositories.IMessageRepository
	bus           contract.Bus
	registry      contract.SessionRegistry
	notifications *NotificationService
	profilePrefix string
}

func NewRoomService(log *slog.Logger, rooms repositories.IRoomRepository,
	roomUsers repositories.IRoomUserRepository, users repositories.IUserRepository,
	messages repositories.IMessageRepository, bus contract.Bus,
	registry contract.SessionRegistry, notifications *NotificationService,
	profilePrefix string) *RoomService {
	return &RoomService{
		log:           log,
		rooms:         rooms,
		roomUsers:     roomUsers,
		users:         users,
		messages:      messages,
		bus:           bus,
		registry:      registry,
		notifications: notifications,
		profilePrefix: profilePrefix,
	}
}

// CreateRoom persists the room and its ADMIN membership. No broadcast:
// a freshly created room has no subscribers yet.
func (s *RoomService) CreateRoom(ctx context.Context, cmd CreateRoomCommand) (domain.RoomID, error) {
	if err := checkCommand(cmd); err != nil {
		return 0, err
	}
	if !cmd.Visibility.Valid() {
		return 0, errors.Validation(fmt.Sprintf("unknown visibility %q", cmd.Visibility))
	}
	if cmd.Visibility == domain.VisibilityPrivate && cmd.Password == "" {
		return 0, errors.Validation("a private room requires a password")
	}

	owner, err := s.users.FindByID(ctx, cmd.OwnerID)
	if err != nil {
		return 0, err
	}

	var passwordHash string
	if cmd.Password != "" {
		if passwordHash, err = auth.HashPassword(cmd.Password); err != nil {
			return 0, errors.TransientIO("hashing room password", err)
		}
	}

	roomID, err := s.rooms.SaveWithOwner(ctx, domain.Room{
		Name:         cmd.Name,
		Visibility:   cmd.Visibility,
		OwnerID:      cmd.OwnerID,
		PasswordHash: passwordHash,
	}, owner.Nickname)
	if err != nil {
		return 0, err
	}
	s.log.Info(fmt.Sprintf("Room %d created by user %d", roomID, cmd.OwnerID))
	return roomID, nil
}

// EnterRoom adds the user as MEMBER. Entering a room you already belong
// to succeeds idempotently and publishes nothing. Private rooms require
// the password to verify against the stored hash.
func (s *RoomService) EnterRoom(ctx context.Context, roomID domain.RoomID, userID domain.UserID, password string) (domain.RoomID, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return 0, err
	}

	member, err := s.roomUsers.Exists(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}
	if member {
		s.log.Info(fmt.Sprintf("User %d is already in room %d", userID, roomID))
		return roomID, nil
	}

	if room.Visibility == domain.VisibilityPrivate {
		ok, err := auth.ComparePassword(password, room.PasswordHash)
		if err != nil {
			// A compare error means the stored hash is unreadable, not
			// that the caller got the password wrong.
			return 0, errors.TransientIO("verifying room password", err)
		}
		if !ok {
			return 0, errors.Forbidden("wrong room password")
		}
	}

	if err := s.roomUsers.Save(ctx, domain.Membership{
		RoomID:   roomID,
		UserID:   userID,
		Nickname: user.Nickname,
		Role:     domain.RoleMember,
	}); err != nil {
		return 0, err
	}

	s.bus.Publish(event.UserEntered{User: user, Room: roomID, Role: domain.RoleMember})
	return roomID, nil
}

// ExitRoom removes a voluntary member. Admins must delete the room
// instead of leaving it; non-members exit as a no-op.
func (s *RoomService) ExitRoom(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	role, err := s.roomUsers.GetRole(ctx, roomID, userID)
	if errors.IsNotFound(err) {
		s.log.Warn(fmt.Sprintf("User %d is not in room %d, nothing to exit", userID, roomID))
		return nil
	}
	if err != nil {
		return err
	}
	if role == domain.RoleAdmin {
		return errors.Forbidden("the room owner cannot leave; delete the room instead")
	}

	if err := s.roomUsers.Delete(ctx, roomID, userID); err != nil {
		return err
	}
	s.bus.Publish(event.UserExited{UserID: userID, Room: roomID, Reason: event.ReasonLeft})
	return nil
}

// DeleteRoom cascades messages, memberships and the room itself in one
// transaction, then broadcasts ROOM_DELETED. Broadcasting after commit
// means departed clients may learn late, but they are never told about
// a deletion that subsequently rolled back.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	role, err := s.roomUsers.GetRole(ctx, roomID, userID)
	if errors.IsNotFound(err) {
		return errors.Forbidden("no permission to delete this room")
	}
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin {
		return errors.Forbidden("no permission to delete this room")
	}

	if err := s.rooms.DeleteCascade(ctx, roomID); err != nil {
		return err
	}

	s.bus.Publish(event.UserExited{Room: roomID, Reason: event.ReasonRoomDeleted})
	s.log.Info(fmt.Sprintf("Room %d deleted by user %d", roomID, userID))
	return nil
}

// KickUser force-removes a member. Only the ADMIN can kick, and the
// ADMIN itself is un-kickable.
func (s *RoomService) KickUser(ctx context.Context, roomID domain.RoomID, kickerID, targetID domain.UserID) error {
	kickerRole, err := s.roomUsers.GetRole(ctx, roomID, kickerID)
	if errors.IsNotFound(err) {
		return errors.Forbidden("no permission to kick users")
	}
	if err != nil {
		return err
	}
	if kickerRole != domain.RoleAdmin {
		return errors.Forbidden("no permission to kick users")
	}

	targetRole, err := s.roomUsers.GetRole(ctx, roomID, targetID)
	if err != nil {
		return err
	}
	if targetRole == domain.RoleAdmin {
		return errors.Forbidden("an admin cannot be kicked")
	}

	if err := s.roomUsers.Delete(ctx, roomID, targetID); err != nil {
		return err
	}
	s.bus.Publish(event.UserExited{UserID: targetID, Room: roomID, Reason: event.ReasonKicked})
	s.log.Info(fmt.Sprintf("User %d kicked from room %d by user %d", targetID, roomID, kickerID))
	return nil
}

// ChangeNickname updates the room-scoped nickname. Nicknames are not
// unique within a room.
func (s *RoomService) ChangeNickname(ctx context.Context, cmd ChangeNicknameCommand) error {
	if err := checkCommand(cmd); err != nil {
		return err
	}
	if err := s.roomUsers.UpdateNickname(ctx, cmd.RoomID, cmd.UserID, cmd.NewNickname); err != nil {
		return err
	}
	s.bus.Publish(event.NicknameChanged{UserID: cmd.UserID, Room: cmd.RoomID, NewNickname: cmd.NewNickname})
	return nil
}

// InviteUser notifies another user to join the room. Members only; the
// invitee must not already belong.
func (s *RoomService) InviteUser(ctx context.Context, roomID domain.RoomID, inviterID, inviteeID domain.UserID) error {
	inviter, err := s.users.FindByID(ctx, inviterID)
	if err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, inviteeID); err != nil {
		return err
	}
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}

	isMember, err := s.roomUsers.Exists(ctx, roomID, inviterID)
	if err != nil {
		return err
	}
	if !isMember {
		return errors.Forbidden("no permission to invite to this room")
	}
	alreadyIn, err := s.roomUsers.Exists(ctx, roomID, inviteeID)
	if err != nil {
		return err
	}
	if alreadyIn {
		return errors.Conflict("user is already in the room")
	}

	metadata, err := json.Marshal(map[string]any{
		"inviterId":       inviter.ID,
		"inviterNickname": inviter.Nickname,
		"roomId":          room.ID,
		"roomName":        room.Name,
	})
	if err != nil {
		return errors.TransientIO("encoding invitation metadata", err)
	}

	_, err = s.notifications.Notify(ctx, domain.Notification{
		UserID:    inviteeID,
		Type:      domain.NotificationRoomInvitation,
		Content:   fmt.Sprintf("%s invited you to the room '%s'", inviter.Nickname, room.Name),
		RelatedID: int64(roomID),
		Metadata:  string(metadata),
	})
	return err
}

// InitRoom returns the snapshot for a member opening a room.
func (s *RoomService) InitRoom(ctx context.Context, roomID domain.RoomID, userID domain.UserID, lines int) (RoomInitData, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return RoomInitData{}, err
	}
	isMember, err := s.roomUsers.Exists(ctx, roomID, userID)
	if err != nil {
		return RoomInitData{}, err
	}
	if !isMember {
		return RoomInitData{}, errors.Forbidden("not a member of this room")
	}

	messages, err := s.messages.FindByCursor(ctx, roomID, nil, lines)
	if err != nil {
		return RoomInitData{}, err
	}
	payloads := mapMessagesToPayloads(ctx, s.users, s.profilePrefix, messages)

	users, err := s.roomUsers.FindUsersByRoom(ctx, roomID)
	if err != nil {
		return RoomInitData{}, err
	}
	for i := range users {
		users[i].Connected = s.registry.IsConnected(roomID, users[i].UserID)
		users[i].ProfileImageURL = broadcast.ProfileImage(s.profilePrefix, users[i].ProfileImageURL)
	}

	return RoomInitData{Users: users, Messages: payloads, RoomName: room.Name}, nil
}

// GetRoomList decorates every room with live connected counts from the
// session registry and the caller's membership flag.
func (s *RoomService) GetRoomList(ctx context.Context, userID domain.UserID) ([]domain.RoomListing, error) {
	listings, err := s.rooms.FindAllWithCount(ctx)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].ConnectedCount = len(s.registry.ConnectedUsers(listings[i].ID))
		joined, err := s.roomUsers.Exists(ctx, listings[i].ID, userID)
		if err != nil {
			return nil, err
		}
		listings[i].Joined = joined
	}
	return listings, nil
}

// FindRoomsByUser lists the rooms the user belongs to.
func (s *RoomService) FindRoomsByUser(ctx context.Context, userID domain.UserID) ([]domain.RoomListing, error) {
	listings, err := s.roomUsers.FindRoomsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].ConnectedCount = len(s.registry.ConnectedUsers(listings[i].ID))
	}
	return listings, nil
}
