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

func newGroup(creator *domain.User, members ...*domain.User) *domain.Group {
	g := &domain.Group{
		ID:        primitive.NewObjectID(),
		Name:      "weekend plans",
		Members:   []primitive.ObjectID{creator.ID},
		Admins:    []primitive.ObjectID{creator.ID},
		CreatedBy: creator.ID,
		ChannelID: "chan-1",
	}
	for _, m := range members {
		g.Members = append(g.Members, m.ID)
	}
	return g
}

func TestCreateGroup(t *testing.T) {
	creator := newUser("alice")
	bob := newUser("bob")

	t.Run("Success", func(t *testing.T) {
		users := new(MockUserRepo)
		groups := new(MockGroupRepo)
		provider := newStubProvider()
		svc := service.NewGroupService(groups, users, provider)

		users.On("GetManyByIDs", mock.Anything, mock.Anything).Return([]*domain.User{bob}, nil)
		groups.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.Group) bool {
			return g.Name == "book club" &&
				g.CreatedBy == creator.ID &&
				g.HasMember(creator.ID) && g.HasMember(bob.ID) &&
				g.IsGroupAdmin(creator.ID)
		})).Return(nil)

		g, err := svc.Create(context.Background(), creator, "book club", []string{bob.ID.Hex()})
		require.NoError(t, err)
		assert.NotEmpty(t, g.ChannelID)
		assert.Len(t, provider.channels, 1)
		groups.AssertExpectations(t)
	})

	t.Run("NameRequired", func(t *testing.T) {
		svc := service.NewGroupService(new(MockGroupRepo), new(MockUserRepo), newStubProvider())
		_, err := svc.Create(context.Background(), creator, "", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("UnknownMember", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetManyByIDs", mock.Anything, mock.Anything).Return([]*domain.User{}, nil)
		svc := service.NewGroupService(new(MockGroupRepo), users, newStubProvider())

		_, err := svc.Create(context.Background(), creator, "book club", []string{bob.ID.Hex()})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("ChannelProvisioningFails", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("GetManyByIDs", mock.Anything, mock.Anything).Return([]*domain.User{bob}, nil)
		provider := newStubProvider()
		provider.channelErr = assert.AnError
		svc := service.NewGroupService(new(MockGroupRepo), users, provider)

		_, err := svc.Create(context.Background(), creator, "book club", []string{bob.ID.Hex()})
		assert.Error(t, err)
	})
}

func TestGroupMembership(t *testing.T) {
	creator := newUser("alice")
	bob := newUser("bob")
	carol := newUser("carol")

	t.Run("AdminAddsMember", func(t *testing.T) {
		g := newGroup(creator, bob)
		users := new(MockUserRepo)
		groups := new(MockGroupRepo)
		provider := newStubProvider()
		svc := service.NewGroupService(groups, users, provider)

		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		users.On("GetByID", mock.Anything, carol.ID).Return(carol, nil)
		groups.On("AddMember", mock.Anything, g.ID, carol.ID).Return(nil)

		got, err := svc.AddMember(context.Background(), creator, g.ID.Hex(), carol.ID.Hex())
		require.NoError(t, err)
		assert.True(t, got.HasMember(carol.ID))
		assert.Equal(t, []string{carol.ID.Hex()}, provider.addedMembers[g.ChannelID])
	})

	t.Run("NonAdminCannotAdd", func(t *testing.T) {
		g := newGroup(creator, bob)
		groups := new(MockGroupRepo)
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		svc := service.NewGroupService(groups, new(MockUserRepo), newStubProvider())

		_, err := svc.AddMember(context.Background(), bob, g.ID.Hex(), carol.ID.Hex())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("AddExistingMemberConflicts", func(t *testing.T) {
		g := newGroup(creator, bob)
		users := new(MockUserRepo)
		groups := new(MockGroupRepo)
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		users.On("GetByID", mock.Anything, bob.ID).Return(bob, nil)
		svc := service.NewGroupService(groups, users, newStubProvider())

		_, err := svc.AddMember(context.Background(), creator, g.ID.Hex(), bob.ID.Hex())
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("AdminRemovesMember", func(t *testing.T) {
		g := newGroup(creator, bob)
		groups := new(MockGroupRepo)
		provider := newStubProvider()
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		groups.On("RemoveMember", mock.Anything, g.ID, bob.ID).Return(nil)
		svc := service.NewGroupService(groups, new(MockUserRepo), provider)

		got, err := svc.RemoveMember(context.Background(), creator, g.ID.Hex(), bob.ID.Hex())
		require.NoError(t, err)
		assert.False(t, got.HasMember(bob.ID))
		assert.Equal(t, []string{bob.ID.Hex()}, provider.removedMembers[g.ChannelID])
	})

	t.Run("OwnerCannotBeRemoved", func(t *testing.T) {
		g := newGroup(creator, bob)
		groups := new(MockGroupRepo)
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		svc := service.NewGroupService(groups, new(MockUserRepo), newStubProvider())

		_, err := svc.RemoveMember(context.Background(), creator, g.ID.Hex(), creator.ID.Hex())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("NonMemberCannotBeRemoved", func(t *testing.T) {
		g := newGroup(creator, bob)
		groups := new(MockGroupRepo)
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		svc := service.NewGroupService(groups, new(MockUserRepo), newStubProvider())

		_, err := svc.RemoveMember(context.Background(), creator, g.ID.Hex(), carol.ID.Hex())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLeaveGroup(t *testing.T) {
	creator := newUser("alice")
	bob := newUser("bob")

	t.Run("MemberLeaves", func(t *testing.T) {
		g := newGroup(creator, bob)
		groups := new(MockGroupRepo)
		provider := newStubProvider()
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		groups.On("Update", mock.Anything, mock.MatchedBy(func(g *domain.Group) bool {
			return !g.HasMember(bob.ID) && g.CreatedBy == creator.ID
		})).Return(nil)
		svc := service.NewGroupService(groups, new(MockUserRepo), provider)

		require.NoError(t, svc.Leave(context.Background(), bob, g.ID.Hex()))
		assert.Equal(t, []string{bob.ID.Hex()}, provider.removedMembers[g.ChannelID])
		groups.AssertExpectations(t)
	})

	t.Run("CreatorLeavingTransfersOwnership", func(t *testing.T) {
		g := newGroup(creator, bob)
		groups := new(MockGroupRepo)
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		groups.On("Update", mock.Anything, mock.MatchedBy(func(g *domain.Group) bool {
			return g.CreatedBy == bob.ID && g.IsGroupAdmin(bob.ID) && !g.HasMember(creator.ID)
		})).Return(nil)
		svc := service.NewGroupService(groups, new(MockUserRepo), newStubProvider())

		require.NoError(t, svc.Leave(context.Background(), creator, g.ID.Hex()))
		groups.AssertExpectations(t)
	})

	t.Run("LastMemberLeavingDeletesGroup", func(t *testing.T) {
		g := newGroup(creator)
		groups := new(MockGroupRepo)
		provider := newStubProvider()
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		groups.On("Delete", mock.Anything, g.ID).Return(nil)
		svc := service.NewGroupService(groups, new(MockUserRepo), provider)

		require.NoError(t, svc.Leave(context.Background(), creator, g.ID.Hex()))
		assert.Equal(t, []string{g.ChannelID}, provider.deleted)
		groups.AssertExpectations(t)
	})

	t.Run("NonMemberCannotLeave", func(t *testing.T) {
		g := newGroup(creator)
		groups := new(MockGroupRepo)
		groups.On("GetByID", mock.Anything, g.ID).Return(g, nil)
		svc := service.NewGroupService(groups, new(MockUserRepo), newStubProvider())

		assert.ErrorIs(t, svc.Leave(context.Background(), bob, g.ID.Hex()), domain.ErrForbidden)
	})
}
