// Package services defines shared utilities consumed by the reply cycle and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp cycle, video, and comment identifiers for
//     logging.
//   - Structured error markers plus the Wrap helper so the polling driver can
//     tell transport, generation, and configuration failures apart with
//     errors.Is instead of string matching.
//
// Integrations live in sub-packages (llm, gemini) and return errors tagged
// with these markers.
package services
