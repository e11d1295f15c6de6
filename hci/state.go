package hci

// State is the lifecycle of one connection slot. A peripheral moves
// Idle → Advertising → Connected; a central moves Idle → Scanning →
// Connecting → Connected. Every terminal transition lands back on Idle
// and returns the slot to the pool.
type State uint8

const (
	StateIdle State = iota
	StateAdvertising
	StateScanning
	StateConnecting
	StateConnected
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdvertising:
		return "advertising"
	case StateScanning:
		return "scanning"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	}
	return "unknown"
}
