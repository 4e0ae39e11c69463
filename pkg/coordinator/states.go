package coordinator

// State is a coordinator lifecycle state.
type State string

const (
	StateBoot             State = "BOOT"
	StateHandshakeGateway State = "HANDSHAKE_GATEWAY"
	StateHandshakeAudit   State = "HANDSHAKE_AUDIT"
	StateRunning          State = "RUNNING"
	StateDegraded         State = "DEGRADED"
	StateFatal            State = "FATAL"
	StateStopping         State = "STOPPING"
)

// AllStates lists every state, in lifecycle order.
var AllStates = []State{
	StateBoot,
	StateHandshakeGateway,
	StateHandshakeAudit,
	StateRunning,
	StateDegraded,
	StateFatal,
	StateStopping,
}

// Terminal reports whether no further progress is made from s.
func (s State) Terminal() bool {
	return s == StateFatal || s == StateStopping
}

// Polling reports whether the polling loops run in s.
func (s State) Polling() bool {
	return s == StateRunning || s == StateDegraded
}

// allowed reports whether a transition from s to next is legal. FATAL and
// STOPPING are reachable from anywhere; FATAL only leads to STOPPING and
// STOPPING leads nowhere.
func (s State) allowed(next State) bool {
	switch s {
	case StateStopping:
		return false
	case StateFatal:
		return next == StateStopping
	}

	switch next {
	case StateFatal, StateStopping:
		return true
	case StateHandshakeGateway:
		return s == StateBoot
	case StateHandshakeAudit:
		return s == StateHandshakeGateway
	case StateRunning:
		return s == StateHandshakeAudit || s == StateDegraded
	case StateDegraded:
		return s == StateRunning
	default:
		return false
	}
}
