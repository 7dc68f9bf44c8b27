package speech

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*SpeakingNotifier)(nil)

// SpeakingNotifier prints through an inner notifier and also speaks.
type SpeakingNotifier struct {
	text  domain.Notifier
	mouth *Mouth
	log   *logger.Logger
}

// NewSpeakingNotifier creates a notifier that both prints and speaks.
func NewSpeakingNotifier(text domain.Notifier, mouth *Mouth, log *logger.Logger) *SpeakingNotifier {
	return &SpeakingNotifier{text: text, mouth: mouth, log: log}
}

// Notify prints the message and speaks it at normal priority, or low for
// watcher nudges.
func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	priority := PriorityNormal
	if strings.HasPrefix(message, "[Watcher]") {
		priority = PriorityLow
	}
	n.mouth.Say(Spoken(message), priority)
	return nil
}

// NotifyUrgent prints the message and speaks it ahead of anything queued.
func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	n.mouth.Say(Spoken(message), PriorityHigh)
	return nil
}

var (
	tagPrefix = regexp.MustCompile(`^\[[A-Za-z]+\]\s*`)
	ansiCodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	durations = regexp.MustCompile(`\b(?:\d+h)?(?:\d+m)?\d+(?:\.\d+)?s\b`)
	volumes   = regexp.MustCompile(`\b(\d+) ml\b`)
	stageNums = regexp.MustCompile(`\b(\d+)/(\d+)\b`)
)

// Spoken rewrites a printed message the way it should be read aloud:
// "[Brew] Stage 2/4: slow pour to 150 ml over 30s." becomes
// "Stage 2 of 4: slow pour to 150 millilitres over 30 seconds."
func Spoken(msg string) string {
	s := ansiCodes.ReplaceAllString(msg, "")
	s = tagPrefix.ReplaceAllString(s, "")
	s = durations.ReplaceAllStringFunc(s, func(d string) string {
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return d
		}
		return sayDuration(parsed)
	})
	s = volumes.ReplaceAllString(s, "$1 millilitres")
	s = stageNums.ReplaceAllString(s, "$1 of $2")
	return strings.TrimSpace(s)
}

func sayDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	sec := int((d % time.Minute) / time.Second)

	var parts []string
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if sec > 0 || m == 0 {
		parts = append(parts, plural(sec, "second"))
	}
	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
