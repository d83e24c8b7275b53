// Package config loads, normalizes, and validates auto-replier configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the environment variables the
// container deployment sets (VIDEO_ID, CHAT_KEYWORD, INTERVAL and friends),
// optionally sourced from a .env file. String variables fill settings the file
// left empty; the numeric weights and INTERVAL replace the file value whenever
// they are set.
//
// The Config returned by Load is treated as immutable and passed explicitly to
// the reply cycle and its collaborators.
package config
