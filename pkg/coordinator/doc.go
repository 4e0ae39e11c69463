// Package coordinator implements the console's lifecycle state machine.
//
//	BOOT → HANDSHAKE_GATEWAY → HANDSHAKE_AUDIT → RUNNING ⇄ DEGRADED
//
// FATAL and STOPPING are reachable from any state. FATAL only leads to
// STOPPING, and STOPPING is final.
//
// The handshake checks health and then the contracts version of each
// source in turn. Each source has an attempt budget that is never reset.
// AUTH and CONTRACT failures are fatal at once; other failures are
// reported and retried after min(MaxHandshakeBackoff, 2^attempt s).
//
// Once both sources pass, the metrics and audit loops poll every
// PollInterval and an inventory loop refreshes peers and sessions on a
// cron schedule. A polling failure moves RUNNING to DEGRADED; a healthy
// metrics poll while both sources are healthy moves back to RUNNING.
//
// All tasks run under the supervisor in the "handshake" and "poll" scopes.
package coordinator
