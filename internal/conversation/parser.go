// Package conversation turns what the user types during a brew into
// intents and prints what the brew has to say back.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(next|done|poured|n|advance)$`), domain.IntentAdvance},
		{regexp.MustCompile(`(?i)^(skip|s)$`), domain.IntentSkip},
		{regexp.MustCompile(`(?i)^(pause|hold|brb|p)$`), domain.IntentPause},
		{regexp.MustCompile(`(?i)^(resume|back|continue|unpause)$`), domain.IntentResume},
		{regexp.MustCompile(`(?i)^(status|where|progress|info|\.)$`), domain.IntentStatus},
		{regexp.MustCompile(`(?i)^(finish|drawdown|drained|f)$`), domain.IntentFinish},
		{regexp.MustCompile(`(?i)^(finish|drawdown)\s+(done|now)$`), domain.IntentFinish},
		{regexp.MustCompile(`(?i)^(quit|exit|stop|q|abandon)$`), domain.IntentQuit},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
	}
	return p
}

// Parse converts user input into an intent. While a session is paused a
// bare "next" resumes it rather than failing.
func (p *KeywordParser) Parse(ctx context.Context, input string, session *domain.Session) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			intent := rule.intent
			if intent == domain.IntentAdvance && session != nil && session.Status == domain.SessionPaused {
				intent = domain.IntentResume
			}
			p.log.Debug("matched intent: %s", intent)
			return &domain.Intent{Type: intent}, nil
		}
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}
