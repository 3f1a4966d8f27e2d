package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonny/stayhub/internal/domain/model"
	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// GuestRepo implements outbound.GuestRepository using SQLite.
type GuestRepo struct {
	db *sql.DB
}

func NewGuestRepo(store *Store) *GuestRepo {
	return &GuestRepo{db: store.DB}
}

var _ outbound.GuestRepository = (*GuestRepo)(nil)

const guestColumns = `id, name, phone, email, stays, last_stay_at, flags, notes, created_at, updated_at`

// Upsert inserts the guest or updates the row with the same id. A guest
// whose phone is already registered under another id updates that row and
// keeps its id.
func (r *GuestRepo) Upsert(ctx context.Context, g model.Guest) (model.Guest, error) {
	if strings.TrimSpace(g.Name) == "" {
		return model.Guest{}, fmt.Errorf("guest name is required")
	}
	g.Phone = model.NormalizePhone(g.Phone)
	if g.Phone != "" {
		existing, err := r.FindByPhone(ctx, g.Phone)
		switch {
		case err == nil:
			g.ID = existing.ID
			g.CreatedAt = existing.CreatedAt
		case !errors.Is(err, outbound.ErrNotFound):
			return model.Guest{}, err
		}
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	flags := g.Flags
	if flags == nil {
		flags = []string{}
	}
	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return model.Guest{}, fmt.Errorf("marshaling guest flags: %w", err)
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	const q = `INSERT INTO guests (` + guestColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			email = excluded.email,
			stays = excluded.stays,
			last_stay_at = excluded.last_stay_at,
			flags = excluded.flags,
			notes = excluded.notes,
			updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, q,
		g.ID, g.Name, g.Phone, g.Email, g.Stays,
		nullableTime(g.LastStayAt), string(flagsJSON), g.Notes,
		g.CreatedAt.UTC(), g.UpdatedAt,
	)
	if err != nil {
		return model.Guest{}, fmt.Errorf("upserting guest: %w", err)
	}
	g.Flags = flags
	return g, nil
}

func (r *GuestRepo) GetByID(ctx context.Context, id string) (model.Guest, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByName matches the full name case-insensitively. With several matches
// the most recently updated guest wins.
func (r *GuestRepo) FindByName(ctx context.Context, name string) (model.Guest, error) {
	return r.findOne(ctx, "name = ? COLLATE NOCASE", strings.TrimSpace(name))
}

func (r *GuestRepo) FindByPhone(ctx context.Context, phone string) (model.Guest, error) {
	phone = model.NormalizePhone(phone)
	if phone == "" {
		return model.Guest{}, outbound.ErrNotFound
	}
	return r.findOne(ctx, "phone = ?", phone)
}

func (r *GuestRepo) findOne(ctx context.Context, where string, arg any) (model.Guest, error) {
	q := `SELECT ` + guestColumns + ` FROM guests WHERE ` + where + ` ORDER BY updated_at DESC LIMIT 1`
	g, err := scanGuest(r.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Guest{}, outbound.ErrNotFound
	}
	if err != nil {
		return model.Guest{}, fmt.Errorf("fetching guest: %w", err)
	}
	return g, nil
}

func scanGuest(s scanner) (model.Guest, error) {
	var g model.Guest
	var lastStay sql.NullTime
	var flagsJSON string

	err := s.Scan(
		&g.ID, &g.Name, &g.Phone, &g.Email, &g.Stays,
		&lastStay, &flagsJSON, &g.Notes,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return model.Guest{}, err
	}
	if lastStay.Valid {
		t := lastStay.Time.UTC()
		g.LastStayAt = &t
	}
	if err := json.Unmarshal([]byte(flagsJSON), &g.Flags); err != nil || g.Flags == nil {
		g.Flags = []string{}
	}
	return g, nil
}
