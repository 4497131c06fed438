package service_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatme/internal/comms"
	"chatme/internal/domain"
	"chatme/internal/ws"
)

// Mock mocks
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil && u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepo) ListExcluding(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]*domain.User, error) {
	args := m.Called(ctx, exclude, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockUserRepo) SetOnlineStatus(ctx context.Context, id primitive.ObjectID, isOnline bool) error {
	args := m.Called(ctx, id, isOnline)
	return args.Error(0)
}

type MockFriendRequestRepo struct {
	mock.Mock
}

func (m *MockFriendRequestRepo) Create(ctx context.Context, fr *domain.FriendRequest) error {
	args := m.Called(ctx, fr)
	if args.Error(0) == nil && fr.ID.IsZero() {
		fr.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockFriendRequestRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FriendRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRequestRepo) FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) (*domain.FriendRequest, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRequestRepo) ListPendingTo(ctx context.Context, userID primitive.ObjectID) ([]*domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRequestRepo) ListPendingFrom(ctx context.Context, userID primitive.ObjectID) ([]*domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRequestRepo) ListPendingInvolving(ctx context.Context, userID primitive.ObjectID) ([]*domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FriendRequest), args.Error(1)
}

func (m *MockFriendRequestRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.RequestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockFriendRequestRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) Create(ctx context.Context, g *domain.Group) error {
	args := m.Called(ctx, g)
	if args.Error(0) == nil && g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockGroupRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Group), args.Error(1)
}

func (m *MockGroupRepo) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupRepo) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupRepo) Update(ctx context.Context, g *domain.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGroupRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubProvider records platform calls and lets tests force failures.
type stubProvider struct {
	tokenErr   error
	channelErr error

	upserts        []comms.Profile
	tokensFor      []string
	channels       []string
	deleted        []string
	addedMembers   map[string][]string
	removedMembers map[string][]string
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		addedMembers:   make(map[string][]string),
		removedMembers: make(map[string][]string),
	}
}

func (p *stubProvider) UpsertUser(ctx context.Context, prof comms.Profile) error {
	p.upserts = append(p.upserts, prof)
	return nil
}

func (p *stubProvider) CreateToken(userID string) (string, error) {
	if p.tokenErr != nil {
		return "", p.tokenErr
	}
	p.tokensFor = append(p.tokensFor, userID)
	return "media-token-" + userID, nil
}

func (p *stubProvider) CreateChannel(ctx context.Context, channelID, createdBy, name string, memberIDs []string) error {
	if p.channelErr != nil {
		return p.channelErr
	}
	p.channels = append(p.channels, channelID)
	return nil
}

func (p *stubProvider) DeleteChannel(ctx context.Context, channelID string) error {
	p.deleted = append(p.deleted, channelID)
	return nil
}

func (p *stubProvider) AddChannelMembers(ctx context.Context, channelID string, userIDs []string) error {
	p.addedMembers[channelID] = append(p.addedMembers[channelID], userIDs...)
	return nil
}

func (p *stubProvider) RemoveChannelMembers(ctx context.Context, channelID string, userIDs []string) error {
	p.removedMembers[channelID] = append(p.removedMembers[channelID], userIDs...)
	return nil
}

// fakeNotifier records pushes. A user receives events only while marked
// online, mirroring the hub's delivery semantics.
type fakeNotifier struct {
	mu     sync.Mutex
	online map[string]bool
	sent   map[string][]ws.Event
}

func newFakeNotifier(online ...string) *fakeNotifier {
	f := &fakeNotifier{
		online: make(map[string]bool),
		sent:   make(map[string][]ws.Event),
	}
	for _, id := range online {
		f.online[id] = true
	}
	return f
}

func (f *fakeNotifier) Send(userID string, event ws.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online[userID] {
		return false
	}
	f.sent[userID] = append(f.sent[userID], event)
	return true
}

func (f *fakeNotifier) SendToMany(userIDs []string, event ws.Event) int {
	delivered := 0
	for _, id := range userIDs {
		if f.Send(id, event) {
			delivered++
		}
	}
	return delivered
}

func (f *fakeNotifier) eventsFor(userID string) []ws.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[userID]
}
