package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonny/stayhub/internal/domain/model"
	"github.com/jonny/stayhub/internal/domain/port/inbound"
	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// Replies sent back to the chat.
const (
	ReplyExpired       = "This action has expired or is unknown."
	ReplyCancelled     = "❌ Action cancelled."
	ReplyNotAuthorized = "⛔ You are not authorized to confirm this action."
	ReplyNoIntent      = "🤷 I couldn't find an actionable request in that message."
	ReplyBadCallback   = "⚠️ Invalid callback data."
	ReplyBusy          = "⏳ This action is busy, please try again."
	replySuccessPrefix = "✅ "
)

// DispatcherDeps groups the collaborators of a Dispatcher.
type DispatcherDeps struct {
	Registry *ActionRegistry
	Pending  *PendingActionStore
	Locks    *MutexStore
	Parser   outbound.IntentParser
	Sender   outbound.ChatSender
	Notifier outbound.Notifier
	Audits   outbound.AuditRepository
}

// DispatcherConfig holds the dispatcher's policy settings.
type DispatcherConfig struct {
	// AllowedSenderID gates direct messages; zero lets everyone through.
	AllowedSenderID int64

	// BotUsername makes commands addressed to other bots ("/cmd@other")
	// get ignored. Empty accepts any suffix.
	BotUsername string

	Commands []SlashCommand
}

// busyReplyTimeout bounds the reply sent after the caller's context ended.
const busyReplyTimeout = 5 * time.Second

// Dispatcher routes chat events to actions and drives the confirm/cancel
// state machine:
//
//	PROPOSED --confirm--> EXECUTING --ok--> DONE (removed)
//	PROPOSED --confirm--> EXECUTING --error--> PROPOSED (kept for retry)
//	PROPOSED --cancel--> CANCELLED (removed)
//
// EXECUTING is not stored anywhere; it is the time the id's lock is held.
type Dispatcher struct {
	registry      *ActionRegistry
	pending       *PendingActionStore
	locks         *MutexStore
	parser        outbound.IntentParser
	sender        outbound.ChatSender
	audits        outbound.AuditRepository
	notify        *detachedNotifier
	commands      map[string]SlashCommand
	allowedSender int64
	botUsername   string
	logger        *slog.Logger
}

// Ensure Dispatcher satisfies the inbound port at compile time.
var _ inbound.ChatPort = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. Nil stores are replaced with fresh ones.
func NewDispatcher(deps DispatcherDeps, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dispatcher")
	if deps.Pending == nil {
		deps.Pending = NewPendingActionStore()
	}
	if deps.Locks == nil {
		deps.Locks = NewMutexStore()
	}
	if deps.Registry == nil {
		deps.Registry = NewActionRegistry(logger)
	}
	commands := make(map[string]SlashCommand, len(cfg.Commands))
	for _, c := range cfg.Commands {
		commands[strings.ToLower(c.Name)] = c
	}
	return &Dispatcher{
		registry:      deps.Registry,
		pending:       deps.Pending,
		locks:         deps.Locks,
		parser:        deps.Parser,
		sender:        deps.Sender,
		audits:        deps.Audits,
		notify:        &detachedNotifier{notifier: deps.Notifier, logger: logger},
		commands:      commands,
		allowedSender: cfg.AllowedSenderID,
		botUsername:   strings.TrimPrefix(cfg.BotUsername, "@"),
		logger:        logger,
	}
}

// HandleMessage implements inbound.ChatPort for direct messages.
func (d *Dispatcher) HandleMessage(ctx context.Context, evt inbound.MessageEvent) error {
	if d.allowedSender != 0 && evt.SenderID != d.allowedSender {
		// Acknowledged upstream without any processing.
		d.logger.Debug("ignoring message from unauthorized sender", "sender", evt.SenderID)
		return nil
	}

	text := strings.TrimSpace(evt.Text)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "/") {
		return d.handleCommand(ctx, evt, text)
	}

	if d.parser == nil {
		return d.reply(ctx, evt.ChatID, ReplyNoIntent)
	}
	intent := d.parser.Parse(ctx, text)
	if !intent.HasAction() {
		return d.reply(ctx, evt.ChatID, ReplyNoIntent)
	}
	d.logger.Info("intent detected",
		"action", intent.Action,
		"requireConfirm", intent.RequireConfirm,
		"sender", evt.SenderID,
	)
	return d.dispatch(ctx, evt, intent.Action, intent.Parameters, intent.RequireConfirm)
}

// HandleCallback implements inbound.ChatPort for confirm/cancel button presses.
func (d *Dispatcher) HandleCallback(ctx context.Context, evt inbound.CallbackEvent) error {
	data, err := model.ParseCallbackData(evt.Data)
	if err != nil {
		d.logger.Warn("malformed callback", "data", evt.Data, "sender", evt.SenderID)
		return d.reply(ctx, evt.ChatID, ReplyBadCallback)
	}

	lock := d.locks.Get(data.ActionID)
	if err := lock.Lock(ctx); err != nil {
		d.logger.Warn("gave up waiting for action lock",
			"actionID", data.ActionID, "sender", evt.SenderID, "error", err)
		replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), busyReplyTimeout)
		defer cancel()
		return d.reply(replyCtx, evt.ChatID, ReplyBusy)
	}
	var (
		text string
		gone bool
	)
	func() {
		defer lock.Unlock()
		switch data.Verb {
		case model.CallbackCancel:
			text, gone = d.cancel(ctx, evt, data.ActionID)
		default:
			text, gone = d.confirm(ctx, evt, data.ActionID)
		}
	}()
	if gone {
		d.locks.Release(data.ActionID)
	}
	return d.reply(ctx, evt.ChatID, text)
}

// Pending exposes the pending-action store, mainly for the sweeper.
func (d *Dispatcher) Pending() *PendingActionStore { return d.pending }

// Locks exposes the per-action lock store.
func (d *Dispatcher) Locks() *MutexStore { return d.locks }

// Wait blocks until background notifications have been delivered.
func (d *Dispatcher) Wait() { d.notify.wait() }

// cancel runs under the id's lock. gone reports whether the id is absent
// from the store afterwards.
func (d *Dispatcher) cancel(ctx context.Context, evt inbound.CallbackEvent, id string) (string, bool) {
	action, ok := d.pending.TryRemove(id)
	if !ok {
		return ReplyExpired, true
	}
	d.logger.Info("action cancelled", "actionID", id, "action", action.ActionName, "sender", evt.SenderID)
	d.audit(ctx, model.NewAuditLog(
		model.AuditActionCancelled,
		action.ActionName,
		actor(evt.SenderID),
		fmt.Sprintf("action %s cancelled", action.ActionName),
	).WithActionID(id).WithChatID(evt.ChatID))
	return ReplyCancelled, true
}

// confirm runs under the id's lock. The TryGet here is what stops a late
// second tap from executing an action that already completed.
func (d *Dispatcher) confirm(ctx context.Context, evt inbound.CallbackEvent, id string) (string, bool) {
	action, ok := d.pending.TryGet(id)
	if !ok {
		return ReplyExpired, true
	}

	if !action.CanBeConfirmedBy(evt.SenderID) {
		d.logger.Warn("confirm denied",
			"actionID", id,
			"action", action.ActionName,
			"sender", evt.SenderID,
			"requestedBy", action.RequestedBy,
		)
		d.audit(ctx, model.NewAuditLog(
			model.AuditActionDenied,
			action.ActionName,
			actor(evt.SenderID),
			fmt.Sprintf("sender %d may not confirm action requested by %d", evt.SenderID, action.RequestedBy),
		).WithActionID(id).WithChatID(evt.ChatID))
		return ReplyNotAuthorized, false
	}

	executor, ok := d.registry.Lookup(action.ActionName)
	if !ok {
		d.logger.Error("no executor registered", "actionID", id, "action", action.ActionName)
		return unknownActionReply(action.ActionName), false
	}

	result, err := executor.Execute(ctx, action.Params())
	if err != nil {
		d.logger.Error("action failed, kept for retry", "actionID", id, "action", action.ActionName, "error", err)
		d.audit(ctx, model.NewAuditLog(
			model.AuditActionFailed,
			action.ActionName,
			actor(evt.SenderID),
			err.Error(),
		).WithActionID(id).WithChatID(evt.ChatID))
		d.notify.send(ctx, outbound.Notification{
			Title: fmt.Sprintf("Action %s failed", action.ActionName),
			Body:  err.Error(),
			Level: outbound.NotificationFailure,
		})
		return fmt.Sprintf("❌ Action failed: %v. Tap Confirm to retry.", err), false
	}

	// The sweeper may have expired the id while the executor ran.
	d.pending.TryRemove(id)
	d.logger.Info("action executed", "actionID", id, "action", action.ActionName, "sender", evt.SenderID)
	d.audit(ctx, model.NewAuditLog(
		model.AuditActionExecuted,
		action.ActionName,
		actor(evt.SenderID),
		result,
	).WithActionID(id).WithChatID(evt.ChatID))
	d.notify.send(ctx, outbound.Notification{
		Title: fmt.Sprintf("Action %s executed", action.ActionName),
		Body:  result,
		Level: outbound.NotificationSuccess,
	})
	return replySuccessPrefix + result, true
}

func (d *Dispatcher) handleCommand(ctx context.Context, evt inbound.MessageEvent, text string) error {
	name, target, args := parseCommand(text)
	if target != "" && d.botUsername != "" && !strings.EqualFold(target, d.botUsername) {
		d.logger.Debug("ignoring command for another bot", "command", name, "bot", target)
		return nil
	}
	switch name {
	case "help", "start":
		return d.reply(ctx, evt.ChatID, d.helpText())
	}
	cmd, ok := d.commands[name]
	if !ok {
		return d.reply(ctx, evt.ChatID, fmt.Sprintf("❓ Unknown command /%s. Try /help.", sanitize(name)))
	}
	return d.dispatch(ctx, evt, cmd.Action, cmd.params(args), cmd.RequireConfirm)
}

func (d *Dispatcher) dispatch(ctx context.Context, evt inbound.MessageEvent, action string, params map[string]string, requireConfirm bool) error {
	if requireConfirm {
		return d.propose(ctx, evt, action, params)
	}
	return d.executeNow(ctx, evt, action, params)
}

// propose stores a PendingAction and asks the requester to confirm it.
func (d *Dispatcher) propose(ctx context.Context, evt inbound.MessageEvent, action string, params map[string]string) error {
	id := model.NewActionID()
	pending := model.NewPendingAction(action, params, evt.SenderID)
	if !d.pending.TryAdd(id, pending) {
		d.logger.Error("pending action id collision", "actionID", id)
		return d.reply(ctx, evt.ChatID, "⚠️ Could not register the action, please try again.")
	}

	d.logger.Info("action proposed", "actionID", id, "action", action, "sender", evt.SenderID)
	d.audit(ctx, model.NewAuditLog(
		model.AuditActionProposed,
		action,
		actor(evt.SenderID),
		fmt.Sprintf("action %s awaiting confirmation", action),
	).WithActionID(id).WithChatID(evt.ChatID))

	prompt := fmt.Sprintf("⚠️ Confirm action %s?", action)
	if len(pending.Parameters) > 0 {
		prompt += "\n" + formatParams(pending.Parameters)
	}
	return d.sender.SendButtons(ctx, evt.ChatID, prompt, []outbound.Button{
		{Label: "✅ Confirm", Data: model.ConfirmPayload(id)},
		{Label: "❌ Cancel", Data: model.CancelPayload(id)},
	})
}

// executeNow runs an action that needs no confirmation.
func (d *Dispatcher) executeNow(ctx context.Context, evt inbound.MessageEvent, action string, params map[string]string) error {
	executor, ok := d.registry.Lookup(action)
	if !ok {
		return d.reply(ctx, evt.ChatID, unknownActionReply(action))
	}
	if params == nil {
		params = map[string]string{}
	}

	result, err := executor.Execute(ctx, params)
	if err != nil {
		d.logger.Error("action failed", "action", action, "sender", evt.SenderID, "error", err)
		d.audit(ctx, model.NewAuditLog(
			model.AuditActionFailed,
			action,
			actor(evt.SenderID),
			err.Error(),
		).WithChatID(evt.ChatID))
		return d.reply(ctx, evt.ChatID, fmt.Sprintf("❌ Action failed: %v", err))
	}

	d.audit(ctx, model.NewAuditLog(
		model.AuditCommandExecuted,
		action,
		actor(evt.SenderID),
		result,
	).WithChatID(evt.ChatID))
	return d.reply(ctx, evt.ChatID, replySuccessPrefix+result)
}

func (d *Dispatcher) helpText() string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	slices.Sort(names)

	lines := []string{"🤖 Available commands:"}
	for _, name := range names {
		cmd := d.commands[name]
		line := fmt.Sprintf("/%s - %s", name, cmd.Description)
		if cmd.RequireConfirm {
			line += " (asks for confirmation)"
		}
		lines = append(lines, line)
	}
	lines = append(lines, "/help - Show this message", "")
	if actions := d.registry.Actions(); len(actions) > 0 {
		lines = append(lines, "Actions: "+strings.Join(actions, ", "))
	}
	lines = append(lines, "You can also describe what you need in plain words.")
	return strings.Join(lines, "\n")
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) error {
	if err := d.sender.SendText(ctx, chatID, text); err != nil {
		return fmt.Errorf("sending reply to chat %d: %w", chatID, err)
	}
	return nil
}

func (d *Dispatcher) audit(ctx context.Context, log model.AuditLog) {
	if d.audits == nil {
		return
	}
	if err := d.audits.Create(ctx, log); err != nil {
		d.logger.Warn("audit write failed", "event", log.EventType, "error", err)
	}
}

func unknownActionReply(name string) string {
	return fmt.Sprintf("⚠️ Unknown action: %s", sanitize(name))
}

func actor(senderID int64) string {
	return strconv.FormatInt(senderID, 10)
}

// sanitize trims user-controlled text to at most 64 bytes, on a rune
// boundary, before echoing it back.
func sanitize(s string) string {
	if n := 64; len(s) > n {
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	return strings.ReplaceAll(s, "`", "'")
}
