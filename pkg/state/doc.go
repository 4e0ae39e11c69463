// Package state holds the console's single source of truth.
//
// The coordinator emits Events; Store.Reduce applies each one under a
// mutex, so application is serialized in emission order. The renderer
// only reads, through Snapshot.
//
// Audit events are deduplicated by id, kept newest-first and bounded to
// MaxAuditEvents. A healthy HealthUpdated clears the source's error; a
// fatal ErrorOccurred sets the global fatal flag, which is never cleared.
// Errors do not refresh LastUpdatedAt, so a failing source goes stale.
package state
