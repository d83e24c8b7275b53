// Package logging assembles the slog loggers used by the daemon and CLI.
//
// Console output is a compact single-line format prefixed with the reply
// cycle id and component; JSON output uses ts/level/msg keys for log shippers.
// Either format can be mirrored into a size-rotated run log file. Context
// helpers tag lines with cycle, video, and comment identifiers carried in a
// context.Context.
package logging
