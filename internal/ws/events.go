package ws

import (
	"time"

	"chatme/internal/domain"
)

// EventType tags every server→client envelope.
type EventType string

const (
	EventConnected             EventType = "connected"
	EventCallInvitation        EventType = "call_invitation"
	EventCallResponse          EventType = "call_response"
	EventCallEnded             EventType = "call_ended"
	EventFriendRequest         EventType = "friend_request"
	EventFriendRequestAccepted EventType = "friend_request_accepted"
	EventGroupCallStarted      EventType = "group_call_started"
	EventGroupCallEnded        EventType = "group_call_ended"
	EventMemberJoinedCall      EventType = "member_joined_call"
	EventPong                  EventType = "pong"
)

// Event is the closed set of envelopes the hub will serialize. New message
// kinds require a new type here plus a constructor, so the wire surface stays
// a compile-time decision.
type Event interface {
	sealed()
}

type ConnectedEvent struct {
	Type   EventType `json:"type"`
	UserID string    `json:"userId"`
}

func NewConnectedEvent(userID string) *ConnectedEvent {
	return &ConnectedEvent{Type: EventConnected, UserID: userID}
}

type CallInvitationEvent struct {
	Type         EventType                `json:"type"`
	CallID       string                   `json:"callId"`
	Caller       domain.CallParty         `json:"caller"`
	Participants []domain.CallParticipant `json:"participants"`
	CallType     domain.CallKind          `json:"callType"`
	CreatedAt    time.Time                `json:"createdAt"`
}

func NewCallInvitationEvent(inv *domain.CallInvitation) *CallInvitationEvent {
	return &CallInvitationEvent{
		Type:         EventCallInvitation,
		CallID:       inv.CallID,
		Caller:       inv.Caller,
		Participants: inv.Participants,
		CallType:     inv.Kind,
		CreatedAt:    inv.CreatedAt,
	}
}

type CallResponseEvent struct {
	Type      EventType                `json:"type"`
	CallID    string                   `json:"callId"`
	Responder domain.CallParty         `json:"responder"`
	Response  domain.ParticipantStatus `json:"response"`
}

func NewCallResponseEvent(callID string, responder domain.CallParty, response domain.ParticipantStatus) *CallResponseEvent {
	return &CallResponseEvent{Type: EventCallResponse, CallID: callID, Responder: responder, Response: response}
}

type CallEndedEvent struct {
	Type    EventType `json:"type"`
	CallID  string    `json:"callId"`
	EndedBy string    `json:"endedBy"`
}

func NewCallEndedEvent(callID, endedBy string) *CallEndedEvent {
	return &CallEndedEvent{Type: EventCallEnded, CallID: callID, EndedBy: endedBy}
}

type FriendRequestEvent struct {
	Type      EventType        `json:"type"`
	RequestID string           `json:"requestId"`
	From      domain.CallParty `json:"from"`
}

func NewFriendRequestEvent(requestID string, from domain.CallParty) *FriendRequestEvent {
	return &FriendRequestEvent{Type: EventFriendRequest, RequestID: requestID, From: from}
}

type FriendRequestAcceptedEvent struct {
	Type      EventType        `json:"type"`
	RequestID string           `json:"requestId"`
	By        domain.CallParty `json:"by"`
}

func NewFriendRequestAcceptedEvent(requestID string, by domain.CallParty) *FriendRequestAcceptedEvent {
	return &FriendRequestAcceptedEvent{Type: EventFriendRequestAccepted, RequestID: requestID, By: by}
}

type GroupCallStartedEvent struct {
	Type      EventType        `json:"type"`
	GroupID   string           `json:"groupId"`
	ChannelID string           `json:"channelId"`
	SessionID string           `json:"sessionId"`
	CallType  domain.CallKind  `json:"callType"`
	StartedBy domain.CallParty `json:"startedBy"`
}

func NewGroupCallStartedEvent(groupID, channelID, sessionID string, kind domain.CallKind, startedBy domain.CallParty) *GroupCallStartedEvent {
	return &GroupCallStartedEvent{
		Type:      EventGroupCallStarted,
		GroupID:   groupID,
		ChannelID: channelID,
		SessionID: sessionID,
		CallType:  kind,
		StartedBy: startedBy,
	}
}

type GroupCallEndedEvent struct {
	Type      EventType        `json:"type"`
	GroupID   string           `json:"groupId"`
	SessionID string           `json:"sessionId"`
	EndedBy   domain.CallParty `json:"endedBy"`
}

func NewGroupCallEndedEvent(groupID, sessionID string, endedBy domain.CallParty) *GroupCallEndedEvent {
	return &GroupCallEndedEvent{Type: EventGroupCallEnded, GroupID: groupID, SessionID: sessionID, EndedBy: endedBy}
}

type MemberJoinedCallEvent struct {
	Type      EventType        `json:"type"`
	GroupID   string           `json:"groupId"`
	SessionID string           `json:"sessionId"`
	Member    domain.CallParty `json:"member"`
}

func NewMemberJoinedCallEvent(groupID, sessionID string, member domain.CallParty) *MemberJoinedCallEvent {
	return &MemberJoinedCallEvent{Type: EventMemberJoinedCall, GroupID: groupID, SessionID: sessionID, Member: member}
}

type PongEvent struct {
	Type EventType `json:"type"`
}

func NewPongEvent() *PongEvent {
	return &PongEvent{Type: EventPong}
}

func (*ConnectedEvent) sealed()             {}
func (*CallInvitationEvent) sealed()        {}
func (*CallResponseEvent) sealed()          {}
func (*CallEndedEvent) sealed()             {}
func (*FriendRequestEvent) sealed()         {}
func (*FriendRequestAcceptedEvent) sealed() {}
func (*GroupCallStartedEvent) sealed()      {}
func (*GroupCallEndedEvent) sealed()        {}
func (*MemberJoinedCallEvent) sealed()      {}
func (*PongEvent) sealed()                  {}
