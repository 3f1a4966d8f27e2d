package outbound

import (
	"context"

	"github.com/jonny/stayhub/internal/domain/model"
)

// IntentParser classifies free text into an action. It fails soft: empty
// input or a classifier error yields a zero Intent.
type IntentParser interface {
	Parse(ctx context.Context, text string) model.Intent
}
