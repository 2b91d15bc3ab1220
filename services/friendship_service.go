package services

import (
	"context"
	"fmt"
	"log/slog"

	"roomchat/domain"
	"roomchat/errors"
	"roomchat/repositories"
)

// FriendshipService owns the friend relation lifecycle:
// NONE -> PENDING (request) -> ACCEPTED (accept by the recipient).
// Requests are stored with the requester as UserID1, so only the
// recipient side can flip the status. Accepted friends feed the
// presence fan-out.
type FriendshipService struct {
	log           *slog.Logger
	friendships   repositories.IFriendshipRepository
	users         repositories.IUserRepository
	notifications *NotificationService
}

func NewFriendshipService(log *slog.Logger, friendships repositories.IFriendshipRepository,
	users repositories.IUserRepository, notifications *NotificationService) *FriendshipService {
	return &FriendshipService{
		log:           log,
		friendships:   friendships,
		users:         users,
		notifications: notifications,
	}
}

// RequestFriendship creates a PENDING relation and notifies the
// recipient. Duplicate requests and existing friendships are rejected
// with CONFLICT.
func (s *FriendshipService) RequestFriendship(ctx context.Context, fromID, toID domain.UserID) error {
	if fromID == toID {
		return errors.Validation("cannot send a friend request to yourself")
	}
	from, err := s.users.FindByID(ctx, fromID)
	if err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, toID); err != nil {
		return err
	}

	if related, err := s.relationWith(ctx, fromID, toID, domain.FriendshipAccepted); err != nil {
		return err
	} else if related {
		return errors.Conflict("already friends")
	}
	if related, err := s.relationWith(ctx, fromID, toID, domain.FriendshipPending); err != nil {
		return err
	} else if related {
		return errors.Conflict("a friend request is already pending")
	}

	if err := s.friendships.Save(ctx, domain.Friendship{
		UserID1: fromID,
		UserID2: toID,
		Status:  domain.FriendshipPending,
	}); err != nil {
		return err
	}
	s.log.Info(fmt.Sprintf("Friend request sent: %d -> %d", fromID, toID))

	_, err = s.notifications.Notify(ctx, domain.Notification{
		UserID:    toID,
		Type:      domain.NotificationFriendRequest,
		Content:   fmt.Sprintf("%s sent you a friend request", from.Nickname),
		RelatedID: int64(fromID),
	})
	return err
}

// AcceptFriendship flips a pending request addressed to userID into
// ACCEPTED and notifies the requester. There is nothing to accept when
// no such request exists.
func (s *FriendshipService) AcceptFriendship(ctx context.Context, userID, requesterID domain.UserID) error {
	pending, err := s.friendships.FindByUserAndStatus(ctx, userID, domain.FriendshipPending)
	if err != nil {
		return err
	}
	var request *domain.Friendship
	for _, f := range pending {
		if f.UserID1 == requesterID && f.UserID2 == userID {
			request = &f
			break
		}
	}
	if request == nil {
		return errors.NotFound("no pending friend request from this user")
	}

	// The upsert keys on (user_id1, user_id2), so saving with the
	// original orientation updates the pending row in place.
	if err := s.friendships.Save(ctx, domain.Friendship{
		UserID1: requesterID,
		UserID2: userID,
		Status:  domain.FriendshipAccepted,
	}); err != nil {
		return err
	}
	s.log.Info(fmt.Sprintf("Friend request accepted: %d -> %d", requesterID, userID))

	accepter, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	_, err = s.notifications.Notify(ctx, domain.Notification{
		UserID:    requesterID,
		Type:      domain.NotificationFriendAccepted,
		Content:   fmt.Sprintf("%s accepted your friend request", accepter.Nickname),
		RelatedID: int64(userID),
	})
	return err
}

// Friends lists the profiles of a user's accepted friends. Friends whose
// account has vanished are skipped.
func (s *FriendshipService) Friends(ctx context.Context, userID domain.UserID) ([]domain.UserProfile, error) {
	accepted, err := s.friendships.FindByUserAndStatus(ctx, userID, domain.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	friends := make([]domain.UserProfile, 0, len(accepted))
	for _, f := range accepted {
		profile, err := s.users.FindByID(ctx, f.Other(userID))
		if errors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		friends = append(friends, profile)
	}
	return friends, nil
}

// relationWith reports whether a relation in the given status exists
// between the two users, in either orientation.
func (s *FriendshipService) relationWith(ctx context.Context, userID, otherID domain.UserID, status domain.FriendshipStatus) (bool, error) {
	relations, err := s.friendships.FindByUserAndStatus(ctx, userID, status)
	if err != nil {
		return false, err
	}
	for _, f := range relations {
		if f.Other(userID) == otherID {
			return true, nil
		}
	}
	return false, nil
}
