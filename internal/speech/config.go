// Package speech speaks brew cues aloud: stage changes, the last seconds
// of a stage and the end of the drawdown, so the scale and kettle can
// have your full attention.
package speech

import "time"

// DefaultVoice is the Azure neural voice used when none is configured.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-AvaNeural"

// DefaultAudioFormat is what Azure returns and the player expects.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Priority levels for speech requests. Higher value = speaks first.
type Priority int

const (
	PriorityLow      Priority = iota // watcher nudges
	PriorityNormal                   // stage announcements
	PriorityHigh                     // almost done, drawdown done
	PriorityCritical                 // errors
)

// Request is a queued item waiting to be spoken.
type Request struct {
	Text     string
	Priority Priority
	QueuedAt time.Time
}
