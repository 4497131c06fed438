package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatme/internal/domain"
	"chatme/internal/ws"
)

func primitiveIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, domain.ErrInvalidInput)
	}
	return oid, nil
}

// GroupCallService is fire-and-forget presence signaling over a persisted
// group: it fans notifications out to the group's members but keeps no call
// state of its own. The durable record of a group call is the chat message
// the client posts to the group's external channel.
type GroupCallService struct {
	groups   domain.GroupRepository
	users    domain.UserRepository
	notifier Notifier
}

func NewGroupCallService(groups domain.GroupRepository, users domain.UserRepository, notifier Notifier) *GroupCallService {
	return &GroupCallService{
		groups:   groups,
		users:    users,
		notifier: notifier,
	}
}

// GroupCallResult reports a fan-out plus the identifiers the client needs to
// join the media session.
type GroupCallResult struct {
	GroupID   string          `json:"groupId"`
	ChannelID string          `json:"channelId"`
	SessionID string          `json:"sessionId"`
	CallType  domain.CallKind `json:"callType,omitempty"`
	Notified  int             `json:"notified"`
}

// Start notifies every other member that a call has started in the group.
// Only a group admin (or the creator) may start one.
func (s *GroupCallService) Start(ctx context.Context, actor *domain.User, groupID string, kind domain.CallKind) (*GroupCallResult, error) {
	if kind != domain.CallVoice && kind != domain.CallVideo {
		return nil, fmt.Errorf("call type must be voice or video: %w", domain.ErrInvalidInput)
	}
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsGroupAdmin(actor.ID) {
		return nil, fmt.Errorf("only group admins may start a call: %w", domain.ErrForbidden)
	}

	sessionID := uuid.NewString()
	others := s.otherMembers(g, actor)
	notified := s.notifier.SendToMany(others,
		ws.NewGroupCallStartedEvent(g.ID.Hex(), g.ChannelID, sessionID, kind, partyOf(actor)))

	return &GroupCallResult{
		GroupID:   g.ID.Hex(),
		ChannelID: g.ChannelID,
		SessionID: sessionID,
		CallType:  kind,
		Notified:  notified,
	}, nil
}

// Join notifies the other members that a member joined the running call.
func (s *GroupCallService) Join(ctx context.Context, actor *domain.User, groupID, sessionID string) (*GroupCallResult, error) {
	g, err := s.memberGroup(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}

	others := s.otherMembers(g, actor)
	notified := s.notifier.SendToMany(others,
		ws.NewMemberJoinedCallEvent(g.ID.Hex(), sessionID, partyOf(actor)))

	return &GroupCallResult{
		GroupID:   g.ID.Hex(),
		ChannelID: g.ChannelID,
		SessionID: sessionID,
		Notified:  notified,
	}, nil
}

// End notifies the other members that the call ended. Any member may end,
// but membership is required, same as Join.
func (s *GroupCallService) End(ctx context.Context, actor *domain.User, groupID, sessionID string) (*GroupCallResult, error) {
	g, err := s.memberGroup(ctx, actor, groupID)
	if err != nil {
		return nil, err
	}

	others := s.otherMembers(g, actor)
	notified := s.notifier.SendToMany(others,
		ws.NewGroupCallEndedEvent(g.ID.Hex(), sessionID, partyOf(actor)))

	return &GroupCallResult{
		GroupID:   g.ID.Hex(),
		ChannelID: g.ChannelID,
		SessionID: sessionID,
		Notified:  notified,
	}, nil
}

func (s *GroupCallService) memberGroup(ctx context.Context, actor *domain.User, groupID string) (*domain.Group, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(actor.ID) {
		return nil, fmt.Errorf("not a member of this group: %w", domain.ErrForbidden)
	}
	return g, nil
}

func (s *GroupCallService) getGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	id, err := primitiveIDFromHex(groupID)
	if err != nil {
		return nil, err
	}
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if g == nil {
		return nil, fmt.Errorf("group: %w", domain.ErrNotFound)
	}
	return g, nil
}

func (s *GroupCallService) otherMembers(g *domain.Group, actor *domain.User) []string {
	others := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m != actor.ID {
			others = append(others, m.Hex())
		}
	}
	return others
}
