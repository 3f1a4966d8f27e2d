package model

import (
	"maps"
	"time"
)

type AuditEventType string

const (
	AuditActionProposed  AuditEventType = "action.proposed"
	AuditActionExecuted  AuditEventType = "action.executed"
	AuditActionFailed    AuditEventType = "action.failed"
	AuditActionCancelled AuditEventType = "action.cancelled"
	AuditActionDenied    AuditEventType = "action.denied"
	AuditActionExpired   AuditEventType = "action.expired"
	AuditCommandExecuted AuditEventType = "command.executed"
	AuditSMSReceived     AuditEventType = "sms.received"
)

type AuditLog struct {
	ID          string            `json:"id"`
	EventType   AuditEventType    `json:"event_type"`
	ActionID    string            `json:"action_id"`
	ActionName  string            `json:"action_name"`
	Actor       string            `json:"actor"`
	ChatID      int64             `json:"chat_id"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

func NewAuditLog(eventType AuditEventType, actionName, actor, description string) AuditLog {
	return AuditLog{
		ID:          generateID(),
		EventType:   eventType,
		ActionName:  actionName,
		Actor:       actor,
		Description: description,
		Metadata:    make(map[string]string),
		CreatedAt:   time.Now().UTC(),
	}
}

func (a AuditLog) WithActionID(actionID string) AuditLog {
	a.ActionID = actionID
	return a
}

func (a AuditLog) WithChatID(chatID int64) AuditLog {
	a.ChatID = chatID
	return a
}

func (a AuditLog) WithMetadata(key, value string) AuditLog {
	meta := make(map[string]string, len(a.Metadata)+1)
	maps.Copy(meta, a.Metadata)
	meta[key] = value
	a.Metadata = meta
	return a
}
