package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatme/internal/domain"
	"chatme/internal/ws"
)

// recommendedPageSize bounds the friend recommendation list.
const recommendedPageSize = 10

// FriendService implements the friend-request lifecycle and the derived
// friends/recommendations reads.
type FriendService struct {
	users    domain.UserRepository
	requests domain.FriendRequestRepository
	notifier Notifier
}

func NewFriendService(users domain.UserRepository, requests domain.FriendRequestRepository, notifier Notifier) *FriendService {
	return &FriendService{
		users:    users,
		requests: requests,
		notifier: notifier,
	}
}

// SendRequest creates a pending request from → to. Self-requests, unknown
// recipients, existing friendships, and pending requests in either direction
// are rejected. The push to the recipient is best-effort.
func (s *FriendService) SendRequest(ctx context.Context, from *domain.User, toID string) (*domain.FriendRequest, error) {
	to, err := primitive.ObjectIDFromHex(toID)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient id: %w", domain.ErrInvalidInput)
	}
	if to == from.ID {
		return nil, fmt.Errorf("cannot send a friend request to yourself: %w", domain.ErrInvalidInput)
	}

	recipient, err := s.users.GetByID(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("get recipient: %w", err)
	}
	if recipient == nil {
		return nil, fmt.Errorf("recipient: %w", domain.ErrNotFound)
	}
	if from.HasFriend(to) {
		return nil, fmt.Errorf("already friends with this user: %w", domain.ErrConflict)
	}

	existing, err := s.requests.FindPendingBetween(ctx, from.ID, to)
	if err != nil {
		return nil, fmt.Errorf("check pending request: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("a friend request already exists between you and this user: %w", domain.ErrConflict)
	}

	fr := &domain.FriendRequest{
		From:   from.ID,
		To:     to,
		Status: domain.RequestPending,
	}
	if err := s.requests.Create(ctx, fr); err != nil {
		return nil, err
	}

	s.notifier.Send(to.Hex(), ws.NewFriendRequestEvent(fr.ID.Hex(), partyOf(from)))
	return fr, nil
}

// Accept marks the request accepted and links both users as friends with
// set semantics. Only the recipient may accept. Accepting an already-accepted
// request succeeds without side effects.
func (s *FriendService) Accept(ctx context.Context, by *domain.User, requestID string) (*domain.FriendRequest, error) {
	fr, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if fr.To != by.ID {
		return nil, fmt.Errorf("only the recipient may accept: %w", domain.ErrForbidden)
	}
	if fr.Status == domain.RequestAccepted {
		return fr, nil
	}
	if fr.Status == domain.RequestRejected {
		return nil, fmt.Errorf("request already rejected: %w", domain.ErrConflict)
	}

	if err := s.requests.UpdateStatus(ctx, fr.ID, domain.RequestAccepted); err != nil {
		return nil, err
	}
	if err := s.users.AddFriend(ctx, fr.From, fr.To); err != nil {
		return nil, err
	}
	if err := s.users.AddFriend(ctx, fr.To, fr.From); err != nil {
		return nil, err
	}
	fr.Status = domain.RequestAccepted

	s.notifier.Send(fr.From.Hex(), ws.NewFriendRequestAcceptedEvent(fr.ID.Hex(), partyOf(by)))
	return fr, nil
}

// Reject marks a pending request rejected. Only the recipient may reject;
// re-rejecting is a no-op success, rejecting an accepted request conflicts.
func (s *FriendService) Reject(ctx context.Context, by *domain.User, requestID string) error {
	fr, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if fr.To != by.ID {
		return fmt.Errorf("only the recipient may reject: %w", domain.ErrForbidden)
	}
	switch fr.Status {
	case domain.RequestRejected:
		return nil
	case domain.RequestAccepted:
		return fmt.Errorf("request already accepted: %w", domain.ErrConflict)
	}
	return s.requests.UpdateStatus(ctx, fr.ID, domain.RequestRejected)
}

// Cancel deletes a still-pending request. Only the sender may cancel.
func (s *FriendService) Cancel(ctx context.Context, by *domain.User, requestID string) error {
	fr, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if fr.From != by.ID {
		return fmt.Errorf("only the sender may cancel: %w", domain.ErrForbidden)
	}
	if fr.Status != domain.RequestPending {
		return fmt.Errorf("only pending requests can be cancelled: %w", domain.ErrConflict)
	}
	return s.requests.Delete(ctx, fr.ID)
}

func (s *FriendService) getRequest(ctx context.Context, requestID string) (*domain.FriendRequest, error) {
	id, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid request id: %w", domain.ErrInvalidInput)
	}
	fr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get friend request: %w", err)
	}
	if fr == nil {
		return nil, fmt.Errorf("friend request: %w", domain.ErrNotFound)
	}
	return fr, nil
}

// Friends resolves the user's friends set to full profiles.
func (s *FriendService) Friends(ctx context.Context, user *domain.User) ([]*domain.User, error) {
	friends, err := s.users.GetManyByIDs(ctx, user.Friends)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []*domain.User{}
	}
	return friends, nil
}

// FriendRequestView enriches a request with the counterpart's profile.
type FriendRequestView struct {
	*domain.FriendRequest
	Sender    *domain.User `json:"sender,omitempty"`
	Recipient *domain.User `json:"recipient,omitempty"`
}

// IncomingRequests lists pending requests addressed to the user, each with
// the sender's profile attached.
func (s *FriendService) IncomingRequests(ctx context.Context, user *domain.User) ([]*FriendRequestView, error) {
	requests, err := s.requests.ListPendingTo(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests, true)
}

// OutgoingRequests lists pending requests the user has sent, each with the
// recipient's profile attached.
func (s *FriendService) OutgoingRequests(ctx context.Context, user *domain.User) ([]*FriendRequestView, error) {
	requests, err := s.requests.ListPendingFrom(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests, false)
}

func (s *FriendService) enrich(ctx context.Context, requests []*domain.FriendRequest, incoming bool) ([]*FriendRequestView, error) {
	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, fr := range requests {
		if incoming {
			ids = append(ids, fr.From)
		} else {
			ids = append(ids, fr.To)
		}
	}
	users, err := s.users.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]*FriendRequestView, 0, len(requests))
	for _, fr := range requests {
		v := &FriendRequestView{FriendRequest: fr}
		if incoming {
			v.Sender = byID[fr.From]
		} else {
			v.Recipient = byID[fr.To]
		}
		views = append(views, v)
	}
	return views, nil
}

// Recommended returns users who are not the requester, not already friends,
// and have no pending request in either direction, bounded to a fixed page.
func (s *FriendService) Recommended(ctx context.Context, user *domain.User) ([]*domain.User, error) {
	pending, err := s.requests.ListPendingInvolving(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	exclude := make([]primitive.ObjectID, 0, len(user.Friends)+len(pending)+1)
	exclude = append(exclude, user.ID)
	exclude = append(exclude, user.Friends...)
	for _, fr := range pending {
		if fr.From == user.ID {
			exclude = append(exclude, fr.To)
		} else {
			exclude = append(exclude, fr.From)
		}
	}

	recommended, err := s.users.ListExcluding(ctx, exclude, recommendedPageSize)
	if err != nil {
		return nil, err
	}
	if recommended == nil {
		recommended = []*domain.User{}
	}
	return recommended, nil
}
