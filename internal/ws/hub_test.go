package ws_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatme/internal/ws"
)

type fakeConn struct {
	written []any
	failing bool
	closed  bool
}

func (c *fakeConn) WriteJSON(v any) error {
	if c.failing {
		return errors.New("broken pipe")
	}
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestSendToUnknownUser(t *testing.T) {
	hub := ws.NewHub()
	assert.False(t, hub.Send("u1", ws.NewPongEvent()))
}

func TestSendDelivers(t *testing.T) {
	hub := ws.NewHub()
	conn := &fakeConn{}
	hub.Register("u1", conn)

	assert.True(t, hub.Send("u1", ws.NewConnectedEvent("u1")))
	assert.Len(t, conn.written, 1)
}

func TestRegisterReplacesPreviousConnection(t *testing.T) {
	hub := ws.NewHub()
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register("u1", first)
	hub.Register("u1", second)

	assert.True(t, first.closed)
	assert.True(t, hub.Send("u1", ws.NewPongEvent()))
	assert.Empty(t, first.written)
	assert.Len(t, second.written, 1)
}

func TestUnregisterIgnoresStaleConnection(t *testing.T) {
	hub := ws.NewHub()
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register("u1", first)
	hub.Register("u1", second)

	// The replaced connection's deferred unregister must not evict the
	// replacement.
	hub.Unregister("u1", first)
	assert.True(t, hub.Connected("u1"))

	hub.Unregister("u1", second)
	assert.False(t, hub.Connected("u1"))
}

func TestFailedSendSelfHeals(t *testing.T) {
	hub := ws.NewHub()
	conn := &fakeConn{failing: true}
	hub.Register("u1", conn)

	assert.False(t, hub.Send("u1", ws.NewPongEvent()))
	assert.True(t, conn.closed)

	// The stale entry is gone; subsequent sends keep failing until the user
	// registers again.
	assert.False(t, hub.Send("u1", ws.NewPongEvent()))
	assert.False(t, hub.Connected("u1"))

	fresh := &fakeConn{}
	hub.Register("u1", fresh)
	assert.True(t, hub.Send("u1", ws.NewPongEvent()))
}

func TestSendToManyTalliesSuccesses(t *testing.T) {
	hub := ws.NewHub()
	ok := &fakeConn{}
	broken := &fakeConn{failing: true}
	hub.Register("u1", ok)
	hub.Register("u2", broken)

	sent := hub.SendToMany([]string{"u1", "u2", "u3"}, ws.NewPongEvent())
	assert.Equal(t, 1, sent)
	assert.Len(t, ok.written, 1)
}
