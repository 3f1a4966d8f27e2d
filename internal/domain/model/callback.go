package model

import (
	"errors"
	"strings"
)

// CallbackVerb is the decision carried by a confirm/cancel button.
type CallbackVerb string

const (
	CallbackConfirm CallbackVerb = "confirm"
	CallbackCancel  CallbackVerb = "cancel"
)

// ErrInvalidCallback is returned for callback payloads that are not
// "confirm:<id>" or "cancel:<id>".
var ErrInvalidCallback = errors.New("invalid callback data")

// CallbackData is the decoded payload of a confirm/cancel button press.
type CallbackData struct {
	Verb     CallbackVerb
	ActionID string
}

// ConfirmPayload builds the payload for the Confirm button of action id.
func ConfirmPayload(id string) string { return string(CallbackConfirm) + ":" + id }

// CancelPayload builds the payload for the Cancel button of action id.
func CancelPayload(id string) string { return string(CallbackCancel) + ":" + id }

// ParseCallbackData decodes a button payload.
func ParseCallbackData(payload string) (CallbackData, error) {
	verb, id, ok := strings.Cut(strings.TrimSpace(payload), ":")
	if !ok || id == "" || strings.ContainsAny(id, " :") {
		return CallbackData{}, ErrInvalidCallback
	}
	switch CallbackVerb(verb) {
	case CallbackConfirm, CallbackCancel:
		return CallbackData{Verb: CallbackVerb(verb), ActionID: id}, nil
	}
	return CallbackData{}, ErrInvalidCallback
}
