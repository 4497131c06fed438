package service

import "chatme/internal/ws"

// Notifier is the push side of the connection registry. *ws.Hub implements
// it; tests substitute a recording fake. Pushes are best-effort: a false
// return or low tally never fails the enclosing operation.
type Notifier interface {
	Send(userID string, event ws.Event) bool
	SendToMany(userIDs []string, event ws.Event) int
}
