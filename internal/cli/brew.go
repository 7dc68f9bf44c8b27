package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/conversation"
	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/speech"
	"github.com/hammamikhairi/ottobrew/internal/timer"
)

// NewBrewCommand creates the interactive brew command.
func NewBrewCommand(opts *RootOptions) *cobra.Command {
	var speak bool
	cmd := &cobra.Command{
		Use:   "brew <recipe>",
		Short: "Brew a recipe stage by stage, then log how it tasted",
		Long: "Start a timed brew. The recipe is an id, a number from 'recipes list' or a name. " +
			"The clock moves through the stages on its own; type 'next' to move on early, " +
			"'pause', 'resume', 'status', 'finish' when the bed has drained, or 'quit'.",
		Args: cobra.MinimumNArgs(1),
		RunE: run(opts, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			r, err := resolveRecipe(ctx, a, strings.Join(args, " "))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			var notifier domain.Notifier = conversation.NewCLINotifier(a.log, a.out, opts.Verbose)
			var mouth *speech.Mouth
			if speak || a.cfg.Speech.Enabled {
				if mouth = openMouth(a); mouth != nil {
					mouth.Start(ctx)
					defer mouth.Stop()
					mouth.Prefetch(ctx, speech.Spoken(resultPrompt))
					notifier = speech.NewSpeakingNotifier(notifier, mouth, a.log)
				}
			}

			sup := timer.New(a.sessions, a.engine, notifier, a.log,
				timer.WithTickInterval(a.cfg.TickInterval()),
				timer.WithWatcher(),
			)

			a.out.Println(display.RenderBanner(display.TermWidth()))
			a.out.Println(display.RenderRecipe(r))
			a.out.Println("")

			session, err := a.engine.StartSession(ctx, r.ID)
			if err != nil {
				return err
			}

			sup.Start(ctx)
			defer sup.Stop()

			loop := &brewLoop{
				app:       a,
				parser:    conversation.NewKeywordParser(a.log),
				mouth:     mouth,
				sessionID: session.ID,
			}
			loop.say(fmt.Sprintf("Brewing %s. Type 'help' for commands.", session.RecipeName))
			loop.showStage(ctx)
			return loop.run(ctx, readLines(ctx, cmd.InOrStdin()))
		}),
	}
	cmd.Flags().BoolVar(&speak, "speak", false, "speak stage cues aloud (needs "+speech.EnvAzureSpeechKey+" and "+speech.EnvAzureSpeechRegion+")")
	return cmd
}

// openMouth builds the voice pipeline, or returns nil when credentials
// or an audio device are missing.
func openMouth(a *app) *speech.Mouth {
	key := os.Getenv(speech.EnvAzureSpeechKey)
	region := os.Getenv(speech.EnvAzureSpeechRegion)
	if key == "" || region == "" {
		a.out.PrintHint(fmt.Sprintf("Voice cues off: set %s and %s.", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion))
		return nil
	}
	player, err := speech.NewPlayer(a.log)
	if err != nil {
		a.log.Error("audio player init failed, speech disabled: %v", err)
		a.out.PrintHint("Voice cues off: no audio device.")
		return nil
	}
	tts := speech.NewAzureClient(key, region, a.log, speech.WithVoice(a.cfg.Speech.Voice))
	a.log.Info("TTS enabled (voice=%s, region=%s)", tts.Voice(), region)
	return speech.NewMouth(tts, player, a.log, speech.WithCacheDir(a.cfg.Speech.CacheDir))
}

// resolveRecipe finds a recipe by id, by its 1-based position in the
// recipe list, or by name.
func resolveRecipe(ctx context.Context, a *app, ref string) (*domain.Recipe, error) {
	if r, err := a.catalog.Recipe(ctx, ref); err == nil {
		return r, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	recipes, err := a.catalog.Recipes(ctx)
	if err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(recipes) {
			return nil, fmt.Errorf("recipe %d: pick a number from 1 to %d", n, len(recipes))
		}
		return a.catalog.Recipe(ctx, recipes[n-1].ID)
	}
	for _, s := range recipes {
		if strings.EqualFold(s.Name, ref) {
			return a.catalog.Recipe(ctx, s.ID)
		}
	}
	return nil, fmt.Errorf("recipe %q: %w", ref, domain.ErrNotFound)
}

// readLines delivers input lines until r is exhausted or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

type brewLoop struct {
	app       *app
	parser    domain.IntentParser
	mouth     *speech.Mouth // nil when voice cues are off
	sessionID string
}

// say prints a companion line and speaks it when voice cues are on.
func (l *brewLoop) say(text string) {
	l.app.out.PrintChat(text)
	if l.mouth != nil {
		l.mouth.Say(speech.Spoken(text), speech.PriorityNormal)
	}
}

func (l *brewLoop) run(ctx context.Context, input <-chan string) error {
	for {
		l.app.out.Print(display.Prompt())

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			l.leave(context.Background())
			return ctx.Err()
		case line, ok = <-input:
			if !ok {
				l.leave(ctx)
				return nil
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		session, err := l.app.engine.Status(ctx, l.sessionID)
		if err != nil {
			return err
		}

		if session.Status == domain.SessionFinished {
			if l.logResult(ctx, line) {
				return nil
			}
			continue
		}

		intent, err := l.parser.Parse(ctx, line, session)
		if err != nil {
			l.app.log.Error("parsing input: %v", err)
			continue
		}
		l.app.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
		if l.handleIntent(ctx, intent) {
			return nil
		}
	}
}

// handleIntent acts on one intent and reports whether the brew is over.
func (l *brewLoop) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	eng := l.app.engine
	out := l.app.out

	// A new command cuts off whatever is being said.
	if l.mouth != nil && intent.Type != domain.IntentUnknown {
		l.mouth.Interrupt()
	}

	switch intent.Type {
	case domain.IntentAdvance:
		_, err := eng.Advance(ctx, l.sessionID)
		l.afterStep(ctx, err)
	case domain.IntentSkip:
		_, err := eng.Skip(ctx, l.sessionID)
		l.afterStep(ctx, err)
	case domain.IntentPause:
		if err := eng.Pause(ctx, l.sessionID); err != nil {
			l.printErr(err)
			return false
		}
		l.say("Paused. The clock is stopped. Type 'resume' when you're ready.")
	case domain.IntentResume:
		if _, err := eng.Resume(ctx, l.sessionID); err != nil {
			l.printErr(err)
			return false
		}
		l.say("Back on the clock.")
		l.showStage(ctx)
	case domain.IntentStatus:
		p, err := eng.Progress(ctx, l.sessionID)
		if err != nil {
			l.printErr(err)
			return false
		}
		out.Println(display.RenderStatusBar(p, display.TermWidth()))
	case domain.IntentFinish:
		if _, err := eng.Finish(ctx, l.sessionID); err != nil {
			l.printErr(err)
			return false
		}
		l.promptResult()
	case domain.IntentQuit:
		if err := eng.Abandon(ctx, l.sessionID); err != nil {
			l.printErr(err)
			return false
		}
		l.say("Brew abandoned. Nothing was logged.")
		return true
	case domain.IntentHelp:
		l.showHelp()
	default:
		out.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", intent.Payload))
	}
	return false
}

func (l *brewLoop) afterStep(ctx context.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoMoreStages):
		l.promptResult()
	case err != nil:
		l.printErr(err)
	default:
		l.showStage(ctx)
	}
}

func (l *brewLoop) showStage(ctx context.Context) {
	p, err := l.app.engine.Progress(ctx, l.sessionID)
	if err != nil {
		l.printErr(err)
		return
	}
	out := l.app.out
	out.PrintHeader(fmt.Sprintf("Stage %d/%d · %s", p.StageNumber, p.StageCount, p.Stage.Type))
	d := time.Duration(p.Stage.Seconds) * time.Second
	line := fmt.Sprintf("Pour to %d ml over %s.", p.PourTo, d)
	if p.Stage.Type == domain.StageWait {
		line = fmt.Sprintf("Wait %s. Scale stays at %d ml.", d, p.PourTo)
	}
	out.PrintInstruction(line)
	if l.mouth != nil {
		l.mouth.Say(speech.Spoken(line), speech.PriorityNormal)
	}
	if p.StageNumber < p.StageCount {
		out.PrintHint(fmt.Sprintf("%d of %d ml once every stage is done.", p.PourTo, p.TargetWater))
	}
}

const (
	resultPrompt  = "How was it? Rate it 0-5, then any of acidity= bitterness= body= sweetness= (0-10), tds=, and notes."
	resultExample = "e.g. 4 acidity=7 tds=1.38 bright, a little thin"
)

func (l *brewLoop) promptResult() {
	l.app.out.PrintHeader("Drawdown done")
	l.say(resultPrompt)
	l.app.out.PrintHint(resultExample)
}

// logResult records the brew from a result line and reports whether the
// brew is over.
func (l *brewLoop) logResult(ctx context.Context, line string) bool {
	out := l.app.out
	if intent, err := l.parser.Parse(ctx, line, nil); err == nil && intent.Type == domain.IntentQuit {
		l.say("Leaving without logging. You can brew it again any time.")
		return true
	}

	result, err := conversation.ParseResult(line)
	if err != nil {
		out.PrintUrgent(err.Error())
		out.PrintHint(resultExample)
		return false
	}
	brew, err := l.app.engine.LogBrew(ctx, l.sessionID, result)
	if err != nil {
		l.printErr(err)
		return false
	}
	l.say(fmt.Sprintf("Brew logged: %s, %d/5. Enjoy the cup.", brew.RecipeName, brew.Rating))
	out.PrintHint(brew.ID)
	return true
}

// leave abandons a session that is still on the clock when input ends.
func (l *brewLoop) leave(ctx context.Context) {
	s, err := l.app.engine.Status(ctx, l.sessionID)
	if err != nil {
		return
	}
	switch s.Status {
	case domain.SessionActive, domain.SessionPaused:
		if err := l.app.engine.Abandon(ctx, l.sessionID); err != nil {
			l.app.log.Warn("abandoning session %s: %v", l.sessionID, err)
		}
	}
}

func (l *brewLoop) printErr(err error) {
	switch {
	case errors.Is(err, domain.ErrSessionPaused):
		l.app.out.PrintHint("The brew is paused. Type 'resume' first.")
	case errors.Is(err, domain.ErrSessionNotActive):
		l.app.out.PrintHint("This brew is no longer on the clock.")
	default:
		l.app.out.PrintUrgent("Error: " + err.Error())
	}
}

func (l *brewLoop) showHelp() {
	out := l.app.out
	out.PrintHeader("Commands")
	for _, c := range [][2]string{
		{"next, done", "move on to the next stage"},
		{"skip", "skip the current stage"},
		{"pause, resume", "stop and restart the clock"},
		{"status", "where you are and what the scale should read"},
		{"finish", "the bed has drained, stop the clock"},
		{"quit", "abandon this brew"},
	} {
		out.PrintInstruction(fmt.Sprintf("%-14s %s", c[0], c[1]))
	}
}
