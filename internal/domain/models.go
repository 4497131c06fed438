package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an application user stored in the identity store.
type User struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FullName    string               `bson:"fullName" json:"fullName"`
	Email       string               `bson:"email" json:"email"`
	Password    string               `bson:"password" json:"-"`
	Bio         string               `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePic  string               `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	Location    string               `bson:"location,omitempty" json:"location,omitempty"`
	IsOnline    bool                 `bson:"isOnline" json:"isOnline"`
	LastSeen    time.Time            `bson:"lastSeen" json:"lastSeen"`
	Friends     []primitive.ObjectID `bson:"friends" json:"friends"`
	IsAdmin     bool                 `bson:"isAdmin" json:"isAdmin"`
	IsOnboarded bool                 `bson:"isOnboarded" json:"isOnboarded"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasFriend reports whether the given user id is already in the friends set.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// RequestStatus is the lifecycle state of a friend request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// FriendRequest connects two users. At most one pending request may exist for
// any unordered {from, to} pair.
type FriendRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From      primitive.ObjectID `bson:"from" json:"from"`
	To        primitive.ObjectID `bson:"to" json:"to"`
	Status    RequestStatus      `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Group is a chat group whose message transport lives on the external
// communications platform; ChannelID is the 1:1 external channel.
type Group struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	Admins    []primitive.ObjectID `bson:"admins" json:"admins"`
	CreatedBy primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	ChannelID string               `bson:"channelId" json:"channelId"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasMember reports whether the user belongs to the group.
func (g *Group) HasMember(id primitive.ObjectID) bool {
	for _, m := range g.Members {
		if m == id {
			return true
		}
	}
	return false
}

// IsGroupAdmin reports whether the user may administer the group. The creator
// always counts as an admin.
func (g *Group) IsGroupAdmin(id primitive.ObjectID) bool {
	if g.CreatedBy == id {
		return true
	}
	for _, a := range g.Admins {
		if a == id {
			return true
		}
	}
	return false
}
