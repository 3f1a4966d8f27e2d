package model

import (
	"maps"
	"time"
)

// Unrestricted is the RequestedBy value meaning any sender may confirm.
const Unrestricted int64 = 0

// PendingAction is a requested but unconfirmed side-effecting operation.
// It is never mutated once stored; to change parameters, remove it and add a
// new one under a fresh identifier.
type PendingAction struct {
	ActionName  string            `json:"action_name"`
	Parameters  map[string]string `json:"parameters"`
	RequestedBy int64             `json:"requested_by"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewPendingAction copies params so later changes by the caller cannot leak
// into the stored record.
func NewPendingAction(actionName string, params map[string]string, requestedBy int64) PendingAction {
	p := make(map[string]string, len(params))
	maps.Copy(p, params)
	return PendingAction{
		ActionName:  actionName,
		Parameters:  p,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now().UTC(),
	}
}

// Params returns a copy of the parameters, safe to hand to an executor.
func (p PendingAction) Params() map[string]string {
	out := make(map[string]string, len(p.Parameters))
	maps.Copy(out, p.Parameters)
	return out
}

// CanBeConfirmedBy reports whether senderID may confirm this action.
func (p PendingAction) CanBeConfirmedBy(senderID int64) bool {
	return p.RequestedBy == Unrestricted || p.RequestedBy == senderID
}

// OlderThan reports whether the action was created before t.
func (p PendingAction) OlderThan(t time.Time) bool {
	return p.CreatedAt.Before(t)
}
