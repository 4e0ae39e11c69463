// Package health serves liveness and readiness probes next to the metrics
// endpoint.
//
//	GET /healthz   200 while the process runs
//	GET /readyz    200 when every registered check passes, 503 otherwise
//	GET /version   build information
//
// The console registers one check for the coordinator (ready only in
// RUNNING) and one per upstream source (healthy and not stale). Checks run
// concurrently, each bounded by the checker timeout.
package health
