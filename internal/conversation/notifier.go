package conversation

import (
	"context"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// Printer is where notifications end up. display.Printer satisfies it.
type Printer interface {
	PrintChat(text string)
	PrintUrgent(text string)
}

// CLINotifier prints notifications to the terminal. Messages may carry a
// "[Source] " tag, which is dropped unless verbose is set.
type CLINotifier struct {
	log     *logger.Logger
	out     Printer
	verbose bool
}

// NewCLINotifier creates a terminal notifier.
func NewCLINotifier(log *logger.Logger, out Printer, verbose bool) *CLINotifier {
	return &CLINotifier{log: log, out: out, verbose: verbose}
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.out.PrintChat(n.format(message))
	return nil
}

// NotifyUrgent prints an urgent notification.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.out.PrintUrgent(n.format(message))
	return nil
}

func (n *CLINotifier) format(message string) string {
	if n.verbose || !strings.HasPrefix(message, "[") {
		return message
	}
	if i := strings.Index(message, "] "); i > 0 {
		return message[i+2:]
	}
	return message
}
