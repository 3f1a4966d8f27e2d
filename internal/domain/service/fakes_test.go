package service_test

import (
	"context"
	"maps"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jonny/stayhub/internal/domain/model"
	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// --- fake ActionExecutor ---

type fakeExecutor struct {
	name   string
	result string
	calls  atomic.Int32
	gate   chan struct{}

	mu         sync.Mutex
	err        error
	lastParams map[string]string
}

func newFakeExecutor(name, result string) *fakeExecutor {
	return &fakeExecutor{name: name, result: result}
}

func (e *fakeExecutor) Name() string { return e.name }

func (e *fakeExecutor) Execute(ctx context.Context, params map[string]string) (string, error) {
	e.calls.Add(1)
	if e.gate != nil {
		select {
		case <-e.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastParams = maps.Clone(params)
	if e.err != nil {
		return "", e.err
	}
	return e.result, nil
}

func (e *fakeExecutor) setErr(err error) {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
}

func (e *fakeExecutor) params() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastParams
}

var _ outbound.ActionExecutor = (*fakeExecutor)(nil)

// --- fake ChatSender ---

type sentMessage struct {
	ChatID  int64
	Text    string
	Buttons []outbound.Button
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (s *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{ChatID: chatID, Text: text})
	return s.err
}

func (s *fakeSender) SendButtons(_ context.Context, chatID int64, text string, buttons []outbound.Button) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	return s.err
}

func (s *fakeSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *fakeSender) texts() []string {
	msgs := s.messages()
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func (s *fakeSender) last() sentMessage {
	msgs := s.messages()
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

// payload returns the callback payload of the most recent button whose data
// starts with prefix.
func (s *fakeSender) payload(prefix string) string {
	msgs := s.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		for _, b := range msgs[i].Buttons {
			if strings.HasPrefix(b.Data, prefix) {
				return b.Data
			}
		}
	}
	return ""
}

var _ outbound.ChatSender = (*fakeSender)(nil)

// --- fake IntentParser ---

type fakeParser struct {
	intent model.Intent
	calls  atomic.Int32
}

func (p *fakeParser) Parse(_ context.Context, _ string) model.Intent {
	p.calls.Add(1)
	return p.intent
}

var _ outbound.IntentParser = (*fakeParser)(nil)

// --- fake AuditRepository ---

type fakeAudits struct {
	mu   sync.Mutex
	logs []model.AuditLog
	err  error
}

func (a *fakeAudits) Create(_ context.Context, log model.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.logs = append(a.logs, log)
	return nil
}

func (a *fakeAudits) List(_ context.Context, _ outbound.AuditFilter, page outbound.PageRequest) (outbound.PageResult[model.AuditLog], error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return outbound.PageResult[model.AuditLog]{Items: a.logs, TotalCount: int64(len(a.logs)), Page: page.Page, Size: page.Size}, nil
}

func (a *fakeAudits) events() []model.AuditEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.AuditEventType, len(a.logs))
	for i, l := range a.logs {
		out[i] = l.EventType
	}
	return out
}

func (a *fakeAudits) entries() []model.AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.AuditLog, len(a.logs))
	copy(out, a.logs)
	return out
}

var _ outbound.AuditRepository = (*fakeAudits)(nil)

// --- fake Notifier ---

type fakeNotifier struct {
	mu   sync.Mutex
	sent []outbound.Notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, notification outbound.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.err
}

func (n *fakeNotifier) notifications() []outbound.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]outbound.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

var _ outbound.Notifier = (*fakeNotifier)(nil)

// --- fake GuestRepository ---

type fakeGuests struct {
	byPhone map[string]model.Guest
	err     error
}

func (g *fakeGuests) Upsert(_ context.Context, guest model.Guest) (model.Guest, error) {
	if g.byPhone == nil {
		g.byPhone = map[string]model.Guest{}
	}
	g.byPhone[guest.Phone] = guest
	return guest, nil
}

func (g *fakeGuests) GetByID(_ context.Context, id string) (model.Guest, error) {
	for _, guest := range g.byPhone {
		if guest.ID == id {
			return guest, nil
		}
	}
	return model.Guest{}, outbound.ErrNotFound
}

func (g *fakeGuests) FindByName(_ context.Context, name string) (model.Guest, error) {
	for _, guest := range g.byPhone {
		if strings.EqualFold(guest.Name, name) {
			return guest, nil
		}
	}
	return model.Guest{}, outbound.ErrNotFound
}

func (g *fakeGuests) FindByPhone(_ context.Context, phone string) (model.Guest, error) {
	if g.err != nil {
		return model.Guest{}, g.err
	}
	guest, ok := g.byPhone[phone]
	if !ok {
		return model.Guest{}, outbound.ErrNotFound
	}
	return guest, nil
}

var _ outbound.GuestRepository = (*fakeGuests)(nil)
