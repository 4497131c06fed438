package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*User, error)
	// ListExcluding returns up to limit users whose id is not in exclude.
	ListExcluding(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]*User, error)
	Update(ctx context.Context, u *User) error
	// AddFriend adds friendID to userID's friends set with $addToSet semantics.
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	SetOnlineStatus(ctx context.Context, id primitive.ObjectID, isOnline bool) error
}

// FriendRequestRepository defines persistence operations for friend requests.
type FriendRequestRepository interface {
	Create(ctx context.Context, fr *FriendRequest) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*FriendRequest, error)
	// FindPendingBetween looks for a pending request in either direction
	// between the two users.
	FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) (*FriendRequest, error)
	ListPendingTo(ctx context.Context, userID primitive.ObjectID) ([]*FriendRequest, error)
	ListPendingFrom(ctx context.Context, userID primitive.ObjectID) ([]*FriendRequest, error)
	// ListPendingInvolving returns all pending requests where the user is
	// either side; used to exclude them from friend recommendations.
	ListPendingInvolving(ctx context.Context, userID primitive.ObjectID) ([]*FriendRequest, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status RequestStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// GroupRepository defines persistence operations for groups.
type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Group, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*Group, error)
	AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error
	// RemoveMember pulls the user from both the members and admins sets.
	RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
