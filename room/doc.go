// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package room implements per-session publish/subscribe for live activity
events.

	b := room.NewBroadcaster()
	l := b.Subscribe(sessionID)
	defer b.Unsubscribe(l)
	for ev := range l.Events() { ... }

# Ordering

Events for one session are delivered to every listener in the order Publish
was called for that session; each event carries a per-session monotonic
sequence number assigned at emission. No ordering holds across sessions.

# Delivery policy

Delivery is best-effort, at most once per listener. A listener subscribed
after an event was published never receives it (no replay). Each listener has
a bounded buffer (DefaultBuffer); when it is full, new events are dropped for
that listener only, so a slow or dead consumer can never backpressure the
publisher.
*/
package room
