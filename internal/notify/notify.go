package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/oceanguard/govclient/internal/metrics"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/queue"
)

// Notifier turns failed commands into a queued webhook message, a metric
// and a Sentry event. Sentry calls are no-ops unless sentry.Init ran.
type Notifier struct {
	q       *queue.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(q *queue.Service, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		q:       q,
		metrics: m,
		logger:  logger,
	}
}

func Message(f commands.Failure) string {
	msg := fmt.Sprintf("%s failed: %v", f.Command, f.Err)
	if f.Account != nil {
		msg = fmt.Sprintf("%s failed for %s: %v", f.Command, f.Account.Hex(), f.Err)
	}
	if f.TxHash != nil {
		msg += fmt.Sprintf(" (tx %s)", f.TxHash.Hex())
	}
	return msg
}

func (n *Notifier) CommandFailed(ctx context.Context, f commands.Failure) {
	if n.metrics != nil {
		n.metrics.CommandFailed(f.Command)
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("command", f.Command)
		if f.TxHash != nil {
			scope.SetExtra("tx", f.TxHash.Hex())
		}
		sentry.CaptureException(f.Err)
	})

	if n.q == nil {
		return
	}

	id := f.Command
	if f.TxHash != nil {
		id = f.TxHash.Hex()
	}

	if err := n.q.Enqueue(queue.NewMessage(id, Message(f))); err != nil {
		n.logger.Warn("dropping notification", "command", f.Command, "error", err)
	}
}

var _ commands.Notifier = (*Notifier)(nil)
