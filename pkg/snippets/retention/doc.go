// Package retention prunes the snippet store.
//
// Pruner removes snippets that have not been used for a configured number
// of days and, when a cap is set, the least recently active ones beyond it.
// Scheduler runs a Pruner on a cron schedule (daily at 4 AM by default).
package retention
