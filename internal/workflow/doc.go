// Package workflow drives reply cycles on a fixed interval.
//
// The Manager owns the reply ledger for the configured video: it loads it
// once, runs one replycycle.Cycle at a time, and persists the ledger after
// every cycle whether the cycle succeeded or not. Failures are classified
// with services.Classify and logged; the loop then sleeps the configured
// poll interval and tries again. There is no backoff.
//
// RunOnce executes a single cycle for cron-style use and shares the same
// persistence and logging path as the background loop.
package workflow
