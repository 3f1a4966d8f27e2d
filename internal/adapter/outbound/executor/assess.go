package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// Assess implements the assess_guest action from the guest register.
type Assess struct {
	guests outbound.GuestRepository
}

var _ outbound.ActionExecutor = (*Assess)(nil)

func NewAssess(guests outbound.GuestRepository) *Assess {
	return &Assess{guests: guests}
}

func (a *Assess) Name() string { return "assess_guest" }

// Description is shown to the intent classifier.
func (a *Assess) Description() string {
	return "Look up a guest by name and summarize their stay history and flags. Parameters: guest."
}

func (a *Assess) Execute(ctx context.Context, params map[string]string) (string, error) {
	name := strings.TrimSpace(params["guest"])
	if name == "" {
		return "", fmt.Errorf("missing parameter: guest")
	}
	g, err := a.guests.FindByName(ctx, name)
	if errors.Is(err, outbound.ErrNotFound) {
		return fmt.Sprintf("No record for guest %q.", name), nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up guest %q: %w", name, err)
	}
	return g.Assessment(), nil
}
