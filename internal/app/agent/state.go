package agent

// ConnState is the agent's connection state machine. Reconnecting is
// entered on any transport loss that was not a deliberate local close;
// Disconnected is terminal once the attempt bound is exhausted.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
