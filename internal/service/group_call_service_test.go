package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatme/internal/domain"
	"chatme/internal/service"
)

func TestStartGroupCall(t *testing.T) {
	creator := newUser("alice")
	bob := newUser("bob")
	carol := newUser("carol")

	t.Run("AdminStartsAndMembersAreNotified", func(t *testing.T) {
		g := newGroup(creator, bob, carol)
		groups := new(MockGroupRepo)
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		notifier := newFakeNotifier(bob.ID.Hex()) // carol offline
		svc := service.NewGroupCallService(groups, new(MockUserRepo), notifier)

		res, err := svc.Start(context.Background(), creator, g.ID.Hex(), domain.CallVideo)
		require.NoError(t, err)
		assert.Equal(t, g.ChannelID, res.ChannelID)
		assert.NotEmpty(t, res.SessionID)
		assert.Equal(t, 1, res.Notified)
		assert.Len(t, notifier.eventsFor(bob.ID.Hex()), 1)
		assert.Empty(t, notifier.eventsFor(creator.ID.Hex()))
	})

	t.Run("NonAdminCannotStart", func(t *testing.T) {
		g := newGroup(creator, bob)
		groups := new(MockGroupRepo)
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		svc := service.NewGroupCallService(groups, new(MockUserRepo), newFakeNotifier())

		_, err := svc.Start(context.Background(), bob, g.ID.Hex(), domain.CallVoice)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("InvalidKind", func(t *testing.T) {
		svc := service.NewGroupCallService(new(MockGroupRepo), new(MockUserRepo), newFakeNotifier())
		_, err := svc.Start(context.Background(), creator, primitive.NewObjectID().Hex(), domain.CallKind("morse"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("UnknownGroup", func(t *testing.T) {
		groups := new(MockGroupRepo)
		id := primitive.NewObjectID()
		groups.On("GetByID", mock.Anything, id).Return(nil, nil)
		svc := service.NewGroupCallService(groups, new(MockUserRepo), newFakeNotifier())

		_, err := svc.Start(context.Background(), creator, id.Hex(), domain.CallVoice)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestJoinGroupCall(t *testing.T) {
	creator := newUser("alice")
	bob := newUser("bob")
	outsider := newUser("mallory")

	g := newGroup(creator, bob)
	groups := new(MockGroupRepo)
	groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)

	t.Run("MemberJoinNotifiesOthers", func(t *testing.T) {
		notifier := newFakeNotifier(creator.ID.Hex(), bob.ID.Hex())
		svc := service.NewGroupCallService(groups, new(MockUserRepo), notifier)

		res, err := svc.Join(context.Background(), bob, g.ID.Hex(), "session-1")
		require.NoError(t, err)
		assert.Equal(t, "session-1", res.SessionID)
		assert.Equal(t, 1, res.Notified)
		assert.Len(t, notifier.eventsFor(creator.ID.Hex()), 1)
	})

	t.Run("NonMemberCannotJoin", func(t *testing.T) {
		svc := service.NewGroupCallService(groups, new(MockUserRepo), newFakeNotifier())
		_, err := svc.Join(context.Background(), outsider, g.ID.Hex(), "session-1")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestEndGroupCall(t *testing.T) {
	creator := newUser("alice")
	bob := newUser("bob")
	outsider := newUser("mallory")

	g := newGroup(creator, bob)
	groups := new(MockGroupRepo)
	groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)

	t.Run("AnyMemberMayEnd", func(t *testing.T) {
		notifier := newFakeNotifier(creator.ID.Hex())
		svc := service.NewGroupCallService(groups, new(MockUserRepo), notifier)

		res, err := svc.End(context.Background(), bob, g.ID.Hex(), "session-1")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Notified)
	})

	t.Run("NonMemberCannotEnd", func(t *testing.T) {
		svc := service.NewGroupCallService(groups, new(MockUserRepo), newFakeNotifier())
		_, err := svc.End(context.Background(), outsider, g.ID.Hex(), "session-1")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
