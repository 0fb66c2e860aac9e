// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session drives the decision-session lifecycle and coordinates
everything that happens to a live session.

# Lifecycle

Sessions move forward only:

	draft → collecting → completed

draft→collecting fires exactly once, when a question batch is saved
(generated or manual). collecting→completed fires exactly once, when
analysis succeeds. Both transitions are compare-and-set operations inside the
store, so two racing "first" triggers can never both win. Failed synthesis
leaves the state untouched and the operation retryable.

# Single flight

The two synthesis operations are expensive and must have exactly one side
effect per session. The engine single-flights them per (session, operation)
key: concurrent callers attach to the in-flight execution and receive the
same result, success or failure. The execution runs on a context detached
from the triggering caller (context.WithoutCancel), so a caller abandoning
the wait never cancels the work for the others. Completed operations
short-circuit to the stored result before the single-flight table is ever
consulted.

# Retry policy

Transient gateway failures (upstream, timeout) are retried once after a
short backoff. Invalid-output failures are not retried.

# Live activity

SubmitResponses publishes a response event to the session's room strictly
after the write commits. Join and Typing fan out the corresponding events.
Closing the engine disconnects every live listener.
*/
package session
