package model

import (
	"strings"

	"github.com/google/uuid"
)

// NewActionID returns an opaque confirm/cancel token: a random UUID rendered as
// 32 lowercase hex characters, never reused.
func NewActionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func generateID() string {
	return uuid.NewString()
}
