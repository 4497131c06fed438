package domain

import "time"

// CallKind distinguishes voice-only from video calls.
type CallKind string

const (
	CallVoice CallKind = "voice"
	CallVideo CallKind = "video"
)

// ParticipantStatus tracks a single participant's answer to an invitation.
type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantAccepted ParticipantStatus = "accepted"
	ParticipantRejected ParticipantStatus = "rejected"
)

// CallParty is the identity snapshot carried inside call structures. IDs are
// user id hex strings; these structs travel over the WebSocket as-is.
type CallParty struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// CallParticipant is a party plus their current answer.
type CallParticipant struct {
	CallParty
	Status ParticipantStatus `json:"status"`
}

// CallInvitation is a proposed call awaiting per-participant answers. It lives
// only in process memory and is discarded after the invite TTL elapses.
type CallInvitation struct {
	CallID       string            `json:"callId"`
	Caller       CallParty         `json:"caller"`
	Participants []CallParticipant `json:"participants"`
	Kind         CallKind          `json:"callType"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Participant returns the participant entry for the given user id, or nil.
func (inv *CallInvitation) Participant(userID string) *CallParticipant {
	for i := range inv.Participants {
		if inv.Participants[i].ID == userID {
			return &inv.Participants[i]
		}
	}
	return nil
}

// AllResponded reports whether every participant has left the pending state.
func (inv *CallInvitation) AllResponded() bool {
	for i := range inv.Participants {
		if inv.Participants[i].Status == ParticipantPending {
			return false
		}
	}
	return true
}

// ActiveCall is the materialized result of a fully answered invitation with at
// least one acceptance. Participants holds only the accepted subset.
type ActiveCall struct {
	CallID       string            `json:"callId"`
	Caller       CallParty         `json:"caller"`
	Participants []CallParticipant `json:"participants"`
	Kind         CallKind          `json:"callType"`
	CreatedAt    time.Time         `json:"createdAt"`
	StartedAt    time.Time         `json:"startedAt"`
}

// Involves reports whether the user is the caller or a listed participant.
func (c *ActiveCall) Involves(userID string) bool {
	if c.Caller.ID == userID {
		return true
	}
	for i := range c.Participants {
		if c.Participants[i].ID == userID {
			return true
		}
	}
	return false
}

// Involves reports whether the user is the caller or a listed participant.
func (inv *CallInvitation) Involves(userID string) bool {
	if inv.Caller.ID == userID {
		return true
	}
	return inv.Participant(userID) != nil
}
