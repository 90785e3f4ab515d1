package chat

// RecordingState is the two-state machine that decides whether a Chat
// accumulates its turns into stored history.
type RecordingState int

const (
	RecordingDisabled RecordingState = iota
	RecordingEnabled
)

// Transition is the only way the state changes. It never touches stored
// history, so disabling recording freezes what was recorded so far.
func (s RecordingState) Transition(enabled bool) RecordingState {
	if enabled {
		return RecordingEnabled
	}
	return RecordingDisabled
}

func (s RecordingState) String() string {
	switch s {
	case RecordingEnabled:
		return "enabled"
	case RecordingDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}
