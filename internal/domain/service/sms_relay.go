package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonny/stayhub/internal/domain/model"
	"github.com/jonny/stayhub/internal/domain/port/inbound"
	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// SMSRelay records inbound SMS messages and forwards a summary of each to the
// operator channels, naming the guest when the number is known.
type SMSRelay struct {
	guests outbound.GuestRepository
	audits outbound.AuditRepository
	notify *detachedNotifier
	logger *slog.Logger
}

var _ inbound.SMSReceiverPort = (*SMSRelay)(nil)

func NewSMSRelay(guests outbound.GuestRepository, audits outbound.AuditRepository, notifier outbound.Notifier, logger *slog.Logger) *SMSRelay {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sms-relay")
	return &SMSRelay{
		guests: guests,
		audits: audits,
		notify: &detachedNotifier{notifier: notifier, logger: logger},
		logger: logger,
	}
}

// ReceiveSMS implements inbound.SMSReceiverPort. Only audit failures are
// returned; notification is fire-and-forget.
func (s *SMSRelay) ReceiveSMS(ctx context.Context, msgs []model.SMSMessage) error {
	var errs []error
	for _, msg := range msgs {
		guestName := s.lookupGuest(ctx, msg.From)

		s.logger.Info("sms received",
			"id", msg.ID,
			"gateway", msg.Gateway,
			"from", msg.From,
			"knownGuest", guestName != "",
		)

		if s.audits != nil {
			entry := model.NewAuditLog(model.AuditSMSReceived, "", msg.From, msg.Text).
				WithMetadata("gateway", msg.Gateway).
				WithMetadata("sms_id", msg.ID)
			if guestName != "" {
				entry = entry.WithMetadata("guest", guestName)
			}
			if err := s.audits.Create(ctx, entry); err != nil {
				errs = append(errs, fmt.Errorf("auditing sms %s: %w", msg.ID, err))
			}
		}

		s.notify.send(ctx, outbound.Notification{
			Title: "Incoming SMS",
			Body:  msg.Summary(guestName),
			Level: outbound.NotificationInfo,
		})
	}
	return errors.Join(errs...)
}

// Wait blocks until background notifications have been delivered.
func (s *SMSRelay) Wait() { s.notify.wait() }

func (s *SMSRelay) lookupGuest(ctx context.Context, phone string) string {
	if s.guests == nil || phone == "" {
		return ""
	}
	g, err := s.guests.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, outbound.ErrNotFound) {
			s.logger.Warn("guest lookup failed", "phone", phone, "error", err)
		}
		return ""
	}
	return g.Name
}
