package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		// Advance variants
		{"next", domain.IntentAdvance, ""},
		{"done", domain.IntentAdvance, ""},
		{"poured", domain.IntentAdvance, ""},
		{"N", domain.IntentAdvance, ""},

		// Skip
		{"skip", domain.IntentSkip, ""},
		{"s", domain.IntentSkip, ""},

		// Pause/Resume
		{"pause", domain.IntentPause, ""},
		{"hold", domain.IntentPause, ""},
		{"resume", domain.IntentResume, ""},
		{"continue", domain.IntentResume, ""},

		// Status
		{"status", domain.IntentStatus, ""},
		{"  where  ", domain.IntentStatus, ""},

		// Finish
		{"finish", domain.IntentFinish, ""},
		{"drawdown done", domain.IntentFinish, ""},
		{"f", domain.IntentFinish, ""},

		// Quit
		{"quit", domain.IntentQuit, ""},
		{"abandon", domain.IntentQuit, ""},
		{"q", domain.IntentQuit, ""},

		// Help
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},

		// Unknown
		{"swirl the kettle", domain.IntentUnknown, "swirl the kettle"},
		{"", domain.IntentUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type != tt.wantType {
				t.Errorf("input=%q: got type %s, want %s", tt.input, intent.Type, tt.wantType)
			}
			if tt.wantPayload != "" && intent.Payload != tt.wantPayload {
				t.Errorf("input=%q: got payload %q, want %q", tt.input, intent.Payload, tt.wantPayload)
			}
		})
	}
}

func TestNextResumesPausedSession(t *testing.T) {
	parser := NewKeywordParser(logger.New(logger.LevelOff, nil))
	paused := &domain.Session{Status: domain.SessionPaused}

	intent, err := parser.Parse(context.Background(), "next", paused)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent.Type != domain.IntentResume {
		t.Fatalf("got %s, want resume", intent.Type)
	}
}

func TestParseResult(t *testing.T) {
	res, err := ParseResult("4 acidity=6 body=7 tds=1.38 bright and juicy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rating != 4 {
		t.Fatalf("rating = %d, want 4", res.Rating)
	}
	if res.Tasting.Acidity == nil || *res.Tasting.Acidity != 6 {
		t.Fatalf("acidity = %v, want 6", res.Tasting.Acidity)
	}
	if res.Tasting.Body == nil || *res.Tasting.Body != 7 {
		t.Fatalf("body = %v, want 7", res.Tasting.Body)
	}
	if res.Tasting.Sweetness != nil {
		t.Fatal("sweetness should stay unrecorded")
	}
	if res.Tasting.TDS == nil || *res.Tasting.TDS != 1.38 {
		t.Fatalf("tds = %v, want 1.38", res.Tasting.TDS)
	}
	if res.Notes != "bright and juicy" {
		t.Fatalf("notes = %q", res.Notes)
	}
}

func TestParseResultErrors(t *testing.T) {
	tests := []struct {
		input      string
		validation bool
	}{
		{"", false},
		{"great", false},
		{"4 acidity=sharp", false},
		{"4 aroma=5", false},
		{"4 tds=high", false},
		{"7", true},
		{"3 body=11", true},
		{"3 tds=-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseResult(tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, domain.ErrValidation); got != tt.validation {
				t.Fatalf("validation error = %v, want %v (%v)", got, tt.validation, err)
			}
		})
	}
}

type recordingPrinter struct {
	chat, urgent []string
}

func (p *recordingPrinter) PrintChat(text string)   { p.chat = append(p.chat, text) }
func (p *recordingPrinter) PrintUrgent(text string) { p.urgent = append(p.urgent, text) }

func TestCLINotifierDropsTags(t *testing.T) {
	ctx := context.Background()
	log := logger.New(logger.LevelOff, nil)

	out := &recordingPrinter{}
	n := NewCLINotifier(log, out, false)
	_ = n.Notify(ctx, "[Brew] Stage 2/3: wait 30 seconds.")
	_ = n.NotifyUrgent(ctx, "Drawdown done.")
	if out.chat[0] != "Stage 2/3: wait 30 seconds." {
		t.Fatalf("chat = %q", out.chat[0])
	}
	if out.urgent[0] != "Drawdown done." {
		t.Fatalf("urgent = %q", out.urgent[0])
	}

	verbose := &recordingPrinter{}
	_ = NewCLINotifier(log, verbose, true).Notify(ctx, "[Watcher] rate it")
	if verbose.chat[0] != "[Watcher] rate it" {
		t.Fatalf("verbose chat = %q", verbose.chat[0])
	}
}
