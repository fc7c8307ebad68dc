// Package notification sends run summaries to chat and mail services.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/updater"
)

// Sender delivers a titled message.
type Sender interface {
	Send(ctx context.Context, title, body string) error
}

// Notifier sends summaries and never fails the caller; delivery errors are
// logged.
type Notifier struct {
	sender Sender
	title  string
	log    logger.Logger
}

// NewNotifier wraps sender. A nil sender makes every call a no-op.
func NewNotifier(sender Sender, title string, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Global().Module("notification")
	}
	return &Notifier{sender: sender, title: title, log: log}
}

// Enabled reports whether a sender is configured
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil
}

// Notify sends body under the configured title.
func (n *Notifier) Notify(ctx context.Context, body string) {
	if !n.Enabled() {
		return
	}
	if err := n.sender.Send(ctx, n.title, body); err != nil {
		n.log.Warn("notification failed", logger.Error(err))
		return
	}
	n.log.Debug("notification sent", logger.String("title", n.title))
}

// UpdateMessage formats the summary of an update run.
func UpdateMessage(year, target string, dryRun bool, summary updater.Summary, runErr error) string {
	var b strings.Builder
	mode := ""
	if dryRun {
		mode = ", dry run"
	}
	fmt.Fprintf(&b, "Inspection update %s (%s%s): %s", year, target, mode, summary)

	var notFound, failed []string
	for _, it := range summary.Items {
		switch it.Outcome {
		case updater.OutcomeNotFound:
			notFound = append(notFound, it.Building)
		case updater.OutcomeFailed:
			failed = append(failed, it.Building)
		}
	}
	if len(notFound) > 0 {
		fmt.Fprintf(&b, "\nNot found: %s", strings.Join(notFound, ", "))
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\nFailed: %s", strings.Join(failed, ", "))
	}
	if runErr != nil {
		fmt.Fprintf(&b, "\nRun stopped: %v", runErr)
	}
	return b.String()
}
