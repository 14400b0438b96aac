package stream

// State is the connection lifecycle state of one channel.
//
//	Disconnected --Connect()--> Connecting --open--> Connected
//	Connected --close (desired open)--> Reconnecting --delay--> Connecting
//	Connected --close (desired closed)--> Disconnected
//	Connecting --close/error (desired open)--> Reconnecting
//	any --Disconnect()--> Disconnected
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
