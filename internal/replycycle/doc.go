// Package replycycle runs one pass over a video's comment threads: it walks
// pages newest first, stops at the first comment already in the ledger,
// evaluates the engagement gate for every new comment, and either posts a
// generated reply or parks the comment while the description advertises that
// the channel is charging.
//
// The early stop relies on the listing being ordered newest first with every
// reply recorded before the walk moves on. A comment that arrives out of
// order behind an already answered one is never revisited.
package replycycle
