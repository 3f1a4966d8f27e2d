package notification

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// Named pairs a notifier with a label used in error messages.
type Named struct {
	Name     string
	Notifier outbound.Notifier
}

// Fanout delivers each notification to every target concurrently.
type Fanout struct {
	targets []Named
}

var _ outbound.Notifier = (*Fanout)(nil)

func NewFanout(targets ...Named) *Fanout {
	return &Fanout{targets: targets}
}

// Notify returns the joined errors of all failed targets. One failing
// target does not stop delivery to the others.
func (f *Fanout) Notify(ctx context.Context, note outbound.Notification) error {
	errs := make([]error, len(f.targets))
	var g errgroup.Group
	for i, t := range f.targets {
		g.Go(func() error {
			if err := t.Notifier.Notify(ctx, note); err != nil {
				errs[i] = fmt.Errorf("%s: %w", t.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Len returns the number of targets.
func (f *Fanout) Len() int { return len(f.targets) }
