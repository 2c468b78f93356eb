package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	mu      sync.Mutex
	written []interface{}
	fail    bool
	closed  bool
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestHubPushReachesOnlyAddressee(t *testing.T) {
	hub := NewHub()
	alice := &fakeConn{}
	bob := &fakeConn{}
	hub.Register(1, alice)
	hub.Register(2, bob)

	hub.Push(1, map[string]string{"type": "notification"})

	assert.Len(t, alice.written, 1)
	assert.Empty(t, bob.written)
}

func TestHubDropsFailedConnections(t *testing.T) {
	hub := NewHub()
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	hub.Register(1, good)
	hub.Register(1, bad)

	hub.Push(1, "hello")

	assert.Equal(t, 1, hub.Connections(1))
	assert.True(t, bad.closed)
	assert.Len(t, good.written, 1)
}

func TestHubUnregisterRemovesEmptyUser(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(3, conn)
	hub.Unregister(3, conn)

	assert.Equal(t, 0, hub.Connections(3))
	hub.Push(3, "ignored")
	assert.Empty(t, conn.written)
}

// stalledConn blocks in WriteJSON until released.
type stalledConn struct {
	fakeConn
	entered chan struct{}
	release chan struct{}
}

func (c *stalledConn) WriteJSON(v interface{}) error {
	close(c.entered)
	<-c.release
	return c.fakeConn.WriteJSON(v)
}

func TestHubStalledClientDoesNotBlockOtherUsers(t *testing.T) {
	hub := NewHub()
	stalled := &stalledConn{entered: make(chan struct{}), release: make(chan struct{})}
	other := &fakeConn{}
	hub.Register(1, stalled)
	hub.Register(2, other)

	go hub.Push(1, "slow")
	<-stalled.entered

	pushed := make(chan struct{})
	go func() {
		hub.Push(2, "fast")
		close(pushed)
	}()

	select {
	case <-pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("push to user 2 waited on user 1's connection")
	}
	assert.Len(t, other.written, 1)

	close(stalled.release)
}
