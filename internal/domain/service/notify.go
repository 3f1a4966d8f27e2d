package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

const notifyTimeout = 15 * time.Second

// detachedNotifier sends notifications in background goroutines. Failures
// are logged and never reach the caller; delivery order relative to the
// caller's own replies is not guaranteed.
type detachedNotifier struct {
	notifier outbound.Notifier
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func (d *detachedNotifier) send(ctx context.Context, n outbound.Notification) {
	if d.notifier == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := d.notifier.Notify(nctx, n); err != nil {
			d.logger.Warn("notification failed", "title", n.Title, "error", err)
		}
	}()
}

// wait blocks until in-flight notifications finish.
func (d *detachedNotifier) wait() {
	d.wg.Wait()
}
