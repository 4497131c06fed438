package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatme/internal/comms"
	"chatme/internal/domain"
)

// GroupService manages group membership. The group's message transport is the
// external channel created alongside it; membership changes are mirrored to
// that channel best-effort.
type GroupService struct {
	groups   domain.GroupRepository
	users    domain.UserRepository
	provider comms.Provider
}

func NewGroupService(groups domain.GroupRepository, users domain.UserRepository, provider comms.Provider) *GroupService {
	return &GroupService{
		groups:   groups,
		users:    users,
		provider: provider,
	}
}

// Create makes a group with the creator as member and admin, plus any listed
// initial members, and provisions the 1:1 external channel.
func (s *GroupService) Create(ctx context.Context, creator *domain.User, name string, memberIDs []string) (*domain.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required: %w", domain.ErrInvalidInput)
	}

	members := []primitive.ObjectID{creator.ID}
	seen := map[primitive.ObjectID]struct{}{creator.ID: {}}
	for _, id := range memberIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid member id %q: %w", id, domain.ErrInvalidInput)
		}
		if _, ok := seen[oid]; ok {
			continue
		}
		seen[oid] = struct{}{}
		members = append(members, oid)
	}

	if len(members) > 1 {
		found, err := s.users.GetManyByIDs(ctx, members[1:])
		if err != nil {
			return nil, fmt.Errorf("resolve members: %w", err)
		}
		if len(found) != len(members)-1 {
			return nil, fmt.Errorf("one or more members do not exist: %w", domain.ErrInvalidInput)
		}
	}

	channelID := uuid.NewString()
	memberHex := make([]string, len(members))
	for i, m := range members {
		memberHex[i] = m.Hex()
	}
	if err := s.provider.CreateChannel(ctx, channelID, creator.ID.Hex(), name, memberHex); err != nil {
		return nil, err
	}

	g := &domain.Group{
		Name:      name,
		Members:   members,
		Admins:    []primitive.ObjectID{creator.ID},
		CreatedBy: creator.ID,
		ChannelID: channelID,
	}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Get returns a group to one of its members.
func (s *GroupService) Get(ctx context.Context, user *domain.User, groupID string) (*domain.Group, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.HasMember(user.ID) {
		return nil, fmt.Errorf("not a member of this group: %w", domain.ErrForbidden)
	}
	return g, nil
}

// ListMine returns every group the user belongs to.
func (s *GroupService) ListMine(ctx context.Context, user *domain.User) ([]*domain.Group, error) {
	groups, err := s.groups.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []*domain.Group{}
	}
	return groups, nil
}

// AddMember adds a user to the group. Admin only.
func (s *GroupService) AddMember(ctx context.Context, actor *domain.User, groupID, userID string) (*domain.Group, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsGroupAdmin(actor.ID) {
		return nil, fmt.Errorf("only group admins may add members: %w", domain.ErrForbidden)
	}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", domain.ErrInvalidInput)
	}
	target, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	if g.HasMember(uid) {
		return nil, fmt.Errorf("user is already a member: %w", domain.ErrConflict)
	}

	if err := s.groups.AddMember(ctx, g.ID, uid); err != nil {
		return nil, err
	}
	g.Members = append(g.Members, uid)

	if err := s.provider.AddChannelMembers(ctx, g.ChannelID, []string{userID}); err != nil {
		log.Printf("group %s: add channel member %s: %v", g.ID.Hex(), userID, err)
	}
	return g, nil
}

// RemoveMember removes a user from the group. Admin only; the creator cannot
// be removed, only leave.
func (s *GroupService) RemoveMember(ctx context.Context, actor *domain.User, groupID, userID string) (*domain.Group, error) {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !g.IsGroupAdmin(actor.ID) {
		return nil, fmt.Errorf("only group admins may remove members: %w", domain.ErrForbidden)
	}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", domain.ErrInvalidInput)
	}
	if uid == g.CreatedBy {
		return nil, fmt.Errorf("the group owner cannot be removed: %w", domain.ErrForbidden)
	}
	if !g.HasMember(uid) {
		return nil, fmt.Errorf("user is not a member: %w", domain.ErrInvalidInput)
	}

	if err := s.groups.RemoveMember(ctx, g.ID, uid); err != nil {
		return nil, err
	}
	g.Members = removeID(g.Members, uid)
	g.Admins = removeID(g.Admins, uid)

	if err := s.provider.RemoveChannelMembers(ctx, g.ChannelID, []string{userID}); err != nil {
		log.Printf("group %s: remove channel member %s: %v", g.ID.Hex(), userID, err)
	}
	return g, nil
}

// Leave removes the acting user from the group. When the creator leaves,
// ownership transfers to the oldest remaining admin, else the first remaining
// member. The last member leaving deletes the group and its channel.
func (s *GroupService) Leave(ctx context.Context, actor *domain.User, groupID string) error {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.HasMember(actor.ID) {
		return fmt.Errorf("not a member of this group: %w", domain.ErrForbidden)
	}

	g.Members = removeID(g.Members, actor.ID)
	g.Admins = removeID(g.Admins, actor.ID)

	if len(g.Members) == 0 {
		if err := s.groups.Delete(ctx, g.ID); err != nil {
			return err
		}
		if err := s.provider.DeleteChannel(ctx, g.ChannelID); err != nil {
			log.Printf("group %s: delete channel %s: %v", g.ID.Hex(), g.ChannelID, err)
		}
		return nil
	}

	if g.CreatedBy == actor.ID {
		var next primitive.ObjectID
		if len(g.Admins) > 0 {
			next = g.Admins[0]
		} else {
			next = g.Members[0]
			g.Admins = append(g.Admins, next)
		}
		g.CreatedBy = next
	}

	if err := s.groups.Update(ctx, g); err != nil {
		return err
	}
	if err := s.provider.RemoveChannelMembers(ctx, g.ChannelID, []string{actor.ID.Hex()}); err != nil {
		log.Printf("group %s: remove channel member %s: %v", g.ID.Hex(), actor.ID.Hex(), err)
	}
	return nil
}

func (s *GroupService) getGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	id, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, fmt.Errorf("invalid group id: %w", domain.ErrInvalidInput)
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

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
