// Package llm generates comment replies through an OpenAI-compatible chat
// completions endpoint (OpenRouter by default).
//
// Generate sends the configured system prompt plus the comment text and
// returns the first non-empty choice. Requests are retried on HTTP 408, 429,
// and 5xx responses, on network timeouts, and on empty completions, with
// exponential backoff (base 1s, max 10s, 3 attempts by default). Retry-After
// headers are honoured up to the max delay. Context cancellation aborts
// retries immediately.
//
// Every failure is tagged with services.ErrGeneration so the reply cycle can
// report it and abort.
package llm
