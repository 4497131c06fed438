// Package comms talks to the external communications platform that owns
// durable chat channels, message history, and audio/video transport. The
// backend only provisions users/channels and mints client tokens; all media
// flows directly between the browser and the platform.
package comms

import "context"

// Profile is the subset of a user's identity mirrored to the platform.
type Profile struct {
	ID    string
	Name  string
	Image string
}

// Provider is the platform contract the services depend on. Tests substitute
// a fake; production wires the Stream HTTP client.
type Provider interface {
	// UpsertUser creates or updates the user's profile on the platform.
	UpsertUser(ctx context.Context, p Profile) error
	// CreateToken mints a client-side token for the given user id. The same
	// token authorizes both chat and call (media) sessions.
	CreateToken(userID string) (string, error)
	// CreateChannel creates a channel with the given members.
	CreateChannel(ctx context.Context, channelID, createdBy, name string, memberIDs []string) error
	DeleteChannel(ctx context.Context, channelID string) error
	AddChannelMembers(ctx context.Context, channelID string, userIDs []string) error
	RemoveChannelMembers(ctx context.Context, channelID string, userIDs []string) error
}
