// Package main hosts the autoreply CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the reply loop in the foreground, runs a
// single cycle for cron-style use, performs the one-time OAuth console flow,
// and inspects the reply ledger, the engagement gate and the running daemon.
// Configuration is resolved once in PersistentPreRunE; commands annotated
// with skipConfigLoad (config init) run without it.
package main
