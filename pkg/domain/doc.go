// Package domain holds the records exchanged between the service adapters,
// the coordinator and the state store, plus the typed error every layer
// returns.
//
// Records are built only from redacted JSON. Errors carry a Kind that drives
// retry and fatality decisions:
//
//	if domain.IsFatalKind(domain.KindOf(err)) {
//	    // halt the handshake
//	}
package domain
