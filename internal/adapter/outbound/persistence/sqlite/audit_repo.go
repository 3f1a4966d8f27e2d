package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonny/stayhub/internal/domain/model"
	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// AuditRepo implements outbound.AuditRepository using SQLite.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{db: store.DB}
}

var _ outbound.AuditRepository = (*AuditRepo)(nil)

// Create inserts a new audit log row.
func (r *AuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	meta, err := marshalStringMap(log.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling audit metadata: %w", err)
	}

	const q = `INSERT INTO audit_logs
		(id, event_type, action_id, action_name, actor, chat_id, description, metadata, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`

	_, err = r.db.ExecContext(ctx, q,
		log.ID, string(log.EventType),
		log.ActionID, log.ActionName,
		log.Actor, log.ChatID, log.Description,
		meta, log.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

// allowedAuditOrderColumns guards ORDER BY against injection.
var allowedAuditOrderColumns = map[string]bool{
	"created_at": true, "event_type": true, "actor": true,
	"action_name": true, "action_id": true,
}

// List returns a filtered page of audit logs.
func (r *AuditRepo) List(ctx context.Context, filter outbound.AuditFilter, page outbound.PageRequest) (outbound.PageResult[model.AuditLog], error) {
	where, args := buildAuditWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("counting audit logs: %w", err)
	}

	orderCol := "created_at"
	if page.OrderBy != "" {
		if !allowedAuditOrderColumns[page.OrderBy] {
			return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("invalid order column: %q", page.OrderBy)
		}
		orderCol = page.OrderBy
	}
	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	size := page.Size
	if size <= 0 {
		size = 20
	}

	q := fmt.Sprintf(`SELECT id, event_type, action_id, action_name, actor, chat_id, description, metadata, created_at
		FROM audit_logs%s ORDER BY %s %s LIMIT ? OFFSET ?`, where, orderCol, dir)

	rows, err := r.db.QueryContext(ctx, q, append(args, size, page.Page*size)...)
	if err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	var items []model.AuditLog
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("scanning audit log: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("iterating audit logs: %w", err)
	}

	return outbound.PageResult[model.AuditLog]{
		Items:      items,
		TotalCount: total,
		Page:       page.Page,
		Size:       size,
	}, nil
}

func scanAuditLog(s scanner) (model.AuditLog, error) {
	var l model.AuditLog
	var eventType, metaJSON string

	err := s.Scan(
		&l.ID, &eventType, &l.ActionID, &l.ActionName,
		&l.Actor, &l.ChatID, &l.Description,
		&metaJSON, &l.CreatedAt,
	)
	if err != nil {
		return model.AuditLog{}, err
	}
	l.EventType = model.AuditEventType(eventType)
	if err := json.Unmarshal([]byte(metaJSON), &l.Metadata); err != nil || l.Metadata == nil {
		l.Metadata = make(map[string]string)
	}
	return l, nil
}

func buildAuditWhere(f outbound.AuditFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, v any) {
		clauses = append(clauses, clause)
		args = append(args, v)
	}
	if f.EventType != "" {
		add("event_type = ?", f.EventType)
	}
	if f.ActionID != "" {
		add("action_id = ?", f.ActionID)
	}
	if f.ActionName != "" {
		add("action_name = ?", f.ActionName)
	}
	if f.Actor != "" {
		add("actor = ?", f.Actor)
	}
	if f.Since != nil {
		add("created_at >= ?", f.Since.UTC())
	}
	if f.Until != nil {
		add("created_at <= ?", f.Until.UTC())
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
