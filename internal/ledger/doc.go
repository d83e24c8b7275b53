// Package ledger records which comments already received an automated reply.
//
// A Ledger is an in-memory, monotonically growing set of comment ids. Stores
// persist it per video: FileStore writes replied_to_<video>.json atomically and
// SQLiteStore keeps rows in ledger.db. A missing ledger loads as empty so the
// first run bootstraps cleanly.
//
// The reply cycle stops at the first comment already present in the ledger.
// That early stop is only correct while the platform lists comments strictly
// newest first; see DESIGN.md for the precondition.
package ledger
