// Package notifications posts error reports to the operator's webhook.
//
// Two locations are reported: platform failures ("youtube api") and text
// generation failures ("text generation"), each behind its own toggle in
// config.toml. Delivery is fire-and-forget and throttled; a failed POST is
// logged and never returned to the reply cycle. When no webhook URL is
// configured NewService returns a no-op implementation.
package notifications
