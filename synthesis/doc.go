// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package synthesis wraps the external reasoning service behind two typed
operations:

	questions, err := client.GenerateQuestions(ctx, topic)
	verdict, err := client.Analyze(ctx, sessionContext)

Both call an OpenAI-compatible chat-completions endpoint in JSON mode and
validate the result against the expected shape before returning it. Malformed
output fails with ErrInvalid naming the offending field; nothing partial is
ever handed to the caller.

# Error taxonomy

  - ErrInvalid: upstream answered, but the payload fails shape validation
    (missing fields, empty text, scores outside [0,100])
  - ErrUpstream: the call itself failed (network error, non-200, bad envelope)
  - ErrTimeout: the configured deadline elapsed

# No retries

The client never retries. The session engine retries transient failures
(ErrUpstream, ErrTimeout) at most once with a short backoff, so a flaky
upstream cannot pin the single-flight slot indefinitely.
*/
package synthesis
