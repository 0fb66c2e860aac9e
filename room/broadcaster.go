// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aliabbas6622/LockItIn-Hackathon/models"
)

// DefaultBuffer is the per-listener event buffer capacity. A listener whose
// buffer is full has new events dropped for it alone (drop-new); the
// publisher and other listeners are never blocked by a slow consumer.
const DefaultBuffer = 16

// Listener is one live subscription to a session's activity stream.
type Listener struct {
	sessionID string
	ch        chan models.RoomEvent
	closed    bool // guarded by the broadcaster mutex
}

// Events returns the stream of room events for this listener. The channel is
// closed on Unsubscribe or broadcaster Close.
func (l *Listener) Events() <-chan models.RoomEvent {
	return l.ch
}

type roomState struct {
	seq       uint64
	listeners map[*Listener]struct{}
}

// Broadcaster fans out room events to every listener subscribed to a session.
// Events carry a per-session monotonically increasing sequence number and are
// delivered to each listener in publish order.
type Broadcaster struct {
	mu     sync.Mutex
	rooms  map[string]*roomState
	buffer int
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		rooms:  make(map[string]*roomState),
		buffer: DefaultBuffer,
	}
}

// Subscribe registers a new listener for a session and returns it
// immediately. Subscribing never blocks; events published before the
// subscription are not replayed.
func (b *Broadcaster) Subscribe(sessionID string) *Listener {
	l := &Listener{
		sessionID: sessionID,
		ch:        make(chan models.RoomEvent, b.buffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		l.closed = true
		close(l.ch)
		return l
	}

	st, ok := b.rooms[sessionID]
	if !ok {
		st = &roomState{listeners: make(map[*Listener]struct{})}
		b.rooms[sessionID] = st
	}
	st.listeners[l] = struct{}{}
	return l
}

// Unsubscribe removes the listener and closes its event channel. Safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.ch)

	if st, ok := b.rooms[l.sessionID]; ok {
		delete(st.listeners, l)
		if len(st.listeners) == 0 && st.seq == 0 {
			delete(b.rooms, l.sessionID)
		}
	}
}

// Publish delivers an event to every listener currently subscribed to the
// session. The sequence number is assigned here, under the same lock that
// performs delivery, so every listener observes per-session publish order.
func (b *Broadcaster) Publish(sessionID, kind string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	st, ok := b.rooms[sessionID]
	if !ok {
		st = &roomState{listeners: make(map[*Listener]struct{})}
		b.rooms[sessionID] = st
	}
	st.seq++

	event := models.RoomEvent{
		SessionID: sessionID,
		Kind:      kind,
		Payload:   payload,
		Sequence:  st.seq,
		Timestamp: time.Now(),
	}

	for l := range st.listeners {
		select {
		case l.ch <- event:
		default:
			// Listener buffer full: drop the event for this listener only.
			slog.Warn("room event dropped for slow listener",
				"session_id", sessionID, "kind", kind, "sequence", event.Sequence)
		}
	}
}

// Close tears down the broadcaster, closing every listener channel. Publish
// and Subscribe become no-ops afterwards.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, st := range b.rooms {
		for l := range st.listeners {
			l.closed = true
			close(l.ch)
		}
	}
	b.rooms = make(map[string]*roomState)
}
