// Package health provides liveness, readiness and version endpoints.
//
// Components register a CheckFunc on a Checker; the readiness endpoint runs
// them concurrently with a per-check timeout and answers 503 when any fails.
package health
