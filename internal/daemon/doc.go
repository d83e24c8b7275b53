// Package daemon coordinates the long-running autoreply process.
//
// It wires configuration, the reply ledger store, the workflow manager and
// the optional metrics endpoint into a single lifecycle, with flock-based
// locking so two processes never reply from the same ledger. Orchestration
// stays here; the reply logic itself lives in replycycle and workflow.
package daemon
