package domain

// IntentType classifies what the user wants to do during a brew.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentAdvance
	IntentSkip
	IntentPause
	IntentResume
	IntentStatus
	IntentQuit
	IntentHelp
	IntentFinish // drawdown done, stop the clock
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentAdvance:
		return "advance"
	case IntentSkip:
		return "skip"
	case IntentPause:
		return "pause"
	case IntentResume:
		return "resume"
	case IntentStatus:
		return "status"
	case IntentQuit:
		return "quit"
	case IntentHelp:
		return "help"
	case IntentFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string
}
