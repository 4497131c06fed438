package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chatme/internal/comms"
	"chatme/internal/domain"
	"chatme/internal/ws"
)

// DefaultInviteTTL bounds how long an unresolved call invitation lives.
const DefaultInviteTTL = 60 * time.Second

// CallService owns the in-memory call state: pending invitations, active
// calls, and the expiry timer per invitation. All state is process-local and
// lost on restart; durability lives with the external platform, not here.
type CallService struct {
	mu          sync.Mutex
	invitations map[string]*domain.CallInvitation
	active      map[string]*domain.ActiveCall
	timers      map[string]*time.Timer

	notifier  Notifier
	users     domain.UserRepository
	provider  comms.Provider
	inviteTTL time.Duration
}

func NewCallService(notifier Notifier, users domain.UserRepository, provider comms.Provider, inviteTTL time.Duration) *CallService {
	if inviteTTL <= 0 {
		inviteTTL = DefaultInviteTTL
	}
	return &CallService{
		invitations: make(map[string]*domain.CallInvitation),
		active:      make(map[string]*domain.ActiveCall),
		timers:      make(map[string]*time.Timer),
		notifier:    notifier,
		users:       users,
		provider:    provider,
		inviteTTL:   inviteTTL,
	}
}

// InitiateResult is the caller's view of a freshly created invitation.
type InitiateResult struct {
	Invitation *domain.CallInvitation `json:"invitation"`
	// Notified counts how many participants received the push; delivery is
	// best-effort and the invitation exists regardless.
	Notified int `json:"notified"`
}

// Initiate validates the participant set, creates a pending invitation,
// pushes call_invitation to every participant, and arms the expiry timer.
func (s *CallService) Initiate(ctx context.Context, caller *domain.User, participantIDs []string, kind domain.CallKind) (*InitiateResult, error) {
	if kind != domain.CallVoice && kind != domain.CallVideo {
		return nil, fmt.Errorf("call type must be voice or video: %w", domain.ErrInvalidInput)
	}
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("at least one participant is required: %w", domain.ErrInvalidInput)
	}

	callerID := caller.ID.Hex()
	seen := make(map[string]struct{}, len(participantIDs))
	oids := make([]primitive.ObjectID, 0, len(participantIDs))
	ids := make([]string, 0, len(participantIDs))
	for _, id := range participantIDs {
		if id == callerID {
			return nil, fmt.Errorf("caller cannot be a participant: %w", domain.ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid participant id %q: %w", id, domain.ErrInvalidInput)
		}
		oids = append(oids, oid)
		ids = append(ids, id)
	}

	// All-or-nothing membership check: every participant must resolve.
	found, err := s.users.GetManyByIDs(ctx, oids)
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}
	if len(found) != len(oids) {
		return nil, fmt.Errorf("one or more participants do not exist: %w", domain.ErrInvalidInput)
	}
	byID := make(map[string]*domain.User, len(found))
	for _, u := range found {
		byID[u.ID.Hex()] = u
	}

	inv := &domain.CallInvitation{
		Caller:    partyOf(caller),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	for _, id := range ids {
		inv.Participants = append(inv.Participants, domain.CallParticipant{
			CallParty: partyOf(byID[id]),
			Status:    domain.ParticipantPending,
		})
	}

	s.mu.Lock()
	inv.CallID = s.newCallIDLocked()
	s.invitations[inv.CallID] = inv
	callID := inv.CallID
	s.timers[callID] = time.AfterFunc(s.inviteTTL, func() { s.expire(callID) })
	snapshot := cloneInvitation(inv)
	s.mu.Unlock()

	notified := s.notifier.SendToMany(ids, ws.NewCallInvitationEvent(snapshot))

	return &InitiateResult{Invitation: snapshot, Notified: notified}, nil
}

// newCallIDLocked generates an id that is not present in either table.
func (s *CallService) newCallIDLocked() string {
	for {
		id := uuid.NewString()
		if _, ok := s.invitations[id]; ok {
			continue
		}
		if _, ok := s.active[id]; ok {
			continue
		}
		return id
	}
}

// expire discards a still-unresolved invitation. No notification is sent;
// the TTL is a cleanup mechanism, not a delivery guarantee.
func (s *CallService) expire(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[callID]; ok {
		delete(s.invitations, callID)
		delete(s.timers, callID)
	}
}

// RespondResult carries what the responding client needs next: on accept, a
// media-join credential plus the roster so it can join immediately.
type RespondResult struct {
	CallID       string                   `json:"callId"`
	Response     domain.ParticipantStatus `json:"response"`
	Token        string                   `json:"token,omitempty"`
	Caller       domain.CallParty         `json:"caller"`
	Participants []domain.CallParticipant `json:"participants"`
}

// Respond records a participant's accept/reject. Re-applying or changing a
// prior decision is allowed; last write wins. Once every participant has
// answered, the invitation is consumed: materialized into an ActiveCall when
// at least one accepted, discarded otherwise.
func (s *CallService) Respond(ctx context.Context, responder *domain.User, callID string, accept bool) (*RespondResult, error) {
	responderID := responder.ID.Hex()

	status := domain.ParticipantRejected
	if accept {
		status = domain.ParticipantAccepted
	}

	s.mu.Lock()
	inv, ok := s.invitations[callID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("call %s: %w", callID, domain.ErrNotFound)
	}
	p := inv.Participant(responderID)
	if p == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("not invited to call %s: %w", callID, domain.ErrForbidden)
	}
	p.Status = status

	caller := inv.Caller
	roster := cloneParticipants(inv.Participants)
	responderParty := p.CallParty

	if inv.AllResponded() {
		accepted := make([]domain.CallParticipant, 0, len(inv.Participants))
		for _, part := range inv.Participants {
			if part.Status == domain.ParticipantAccepted {
				accepted = append(accepted, part)
			}
		}
		if len(accepted) > 0 {
			s.active[callID] = &domain.ActiveCall{
				CallID:       callID,
				Caller:       inv.Caller,
				Participants: accepted,
				Kind:         inv.Kind,
				CreatedAt:    inv.CreatedAt,
				StartedAt:    time.Now().UTC(),
			}
		}
		delete(s.invitations, callID)
		s.cancelTimerLocked(callID)
	}
	s.mu.Unlock()

	s.notifier.Send(caller.ID, ws.NewCallResponseEvent(callID, responderParty, status))

	res := &RespondResult{
		CallID:       callID,
		Response:     status,
		Caller:       caller,
		Participants: roster,
	}
	if accept {
		token, err := s.provider.CreateToken(responderID)
		if err != nil {
			return nil, fmt.Errorf("mint media token: %v: %w", err, domain.ErrUpstream)
		}
		res.Token = token
	}
	return res, nil
}

// CallDetails is the read-side view over both tables.
type CallDetails struct {
	CallID       string                   `json:"callId"`
	Status       string                   `json:"status"` // "active" or "pending"
	CallType     domain.CallKind          `json:"callType"`
	Caller       domain.CallParty         `json:"caller"`
	Participants []domain.CallParticipant `json:"participants"`
	CreatedAt    time.Time                `json:"createdAt"`
	StartedAt    *time.Time               `json:"startedAt,omitempty"`
}

// GetDetails looks the call up in the active table first, then in the open
// invitations. The requester must be the caller or a listed participant.
func (s *CallService) GetDetails(requesterID, callID string) (*CallDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call, ok := s.active[callID]; ok {
		if !call.Involves(requesterID) {
			return nil, fmt.Errorf("not a party to call %s: %w", callID, domain.ErrForbidden)
		}
		started := call.StartedAt
		return &CallDetails{
			CallID:       call.CallID,
			Status:       "active",
			CallType:     call.Kind,
			Caller:       call.Caller,
			Participants: cloneParticipants(call.Participants),
			CreatedAt:    call.CreatedAt,
			StartedAt:    &started,
		}, nil
	}

	if inv, ok := s.invitations[callID]; ok {
		if !inv.Involves(requesterID) {
			return nil, fmt.Errorf("not a party to call %s: %w", callID, domain.ErrForbidden)
		}
		return &CallDetails{
			CallID:       inv.CallID,
			Status:       "pending",
			CallType:     inv.Kind,
			Caller:       inv.Caller,
			Participants: cloneParticipants(inv.Participants),
			CreatedAt:    inv.CreatedAt,
		}, nil
	}

	return nil, fmt.Errorf("call %s: %w", callID, domain.ErrNotFound)
}

// End removes the call from both tables unconditionally and notifies every
// other party once. Any listed party may end. The call lives in at most one
// table at a time, but both are cleared.
func (s *CallService) End(requesterID, callID string) error {
	s.mu.Lock()

	var caller domain.CallParty
	var participants []domain.CallParticipant
	if call, ok := s.active[callID]; ok {
		if !call.Involves(requesterID) {
			s.mu.Unlock()
			return fmt.Errorf("not a party to call %s: %w", callID, domain.ErrForbidden)
		}
		caller = call.Caller
		participants = call.Participants
	} else if inv, ok := s.invitations[callID]; ok {
		if !inv.Involves(requesterID) {
			s.mu.Unlock()
			return fmt.Errorf("not a party to call %s: %w", callID, domain.ErrForbidden)
		}
		caller = inv.Caller
		participants = inv.Participants
	} else {
		s.mu.Unlock()
		return fmt.Errorf("call %s: %w", callID, domain.ErrNotFound)
	}

	others := make([]string, 0, len(participants)+1)
	if caller.ID != requesterID {
		others = append(others, caller.ID)
	}
	for _, p := range participants {
		if p.ID != requesterID && p.ID != caller.ID {
			others = append(others, p.ID)
		}
	}

	delete(s.active, callID)
	delete(s.invitations, callID)
	s.cancelTimerLocked(callID)
	s.mu.Unlock()

	s.notifier.SendToMany(others, ws.NewCallEndedEvent(callID, requesterID))
	return nil
}

// ListMine returns every live call the requester is a party to, tagged with
// its table of origin. Linear in the number of live calls, which is bounded
// by process lifetime anyway.
func (s *CallService) ListMine(requesterID string) []*CallDetails {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]*CallDetails, 0)
	for _, call := range s.active {
		if call.Involves(requesterID) {
			started := call.StartedAt
			calls = append(calls, &CallDetails{
				CallID:       call.CallID,
				Status:       "active",
				CallType:     call.Kind,
				Caller:       call.Caller,
				Participants: cloneParticipants(call.Participants),
				CreatedAt:    call.CreatedAt,
				StartedAt:    &started,
			})
		}
	}
	for _, inv := range s.invitations {
		if inv.Involves(requesterID) {
			calls = append(calls, &CallDetails{
				CallID:       inv.CallID,
				Status:       "pending",
				CallType:     inv.Kind,
				Caller:       inv.Caller,
				Participants: cloneParticipants(inv.Participants),
				CreatedAt:    inv.CreatedAt,
			})
		}
	}
	return calls
}

func (s *CallService) cancelTimerLocked(callID string) {
	if timer, ok := s.timers[callID]; ok {
		timer.Stop()
		delete(s.timers, callID)
	}
}

func partyOf(u *domain.User) domain.CallParty {
	return domain.CallParty{
		ID:     u.ID.Hex(),
		Name:   u.FullName,
		Avatar: u.ProfilePic,
	}
}

func cloneParticipants(in []domain.CallParticipant) []domain.CallParticipant {
	out := make([]domain.CallParticipant, len(in))
	copy(out, in)
	return out
}

func cloneInvitation(inv *domain.CallInvitation) *domain.CallInvitation {
	c := *inv
	c.Participants = cloneParticipants(inv.Participants)
	return &c
}
