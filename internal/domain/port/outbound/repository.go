package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/jonny/stayhub/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type PageRequest struct {
	Page    int
	Size    int
	OrderBy string
	Desc    bool
}

type PageResult[T any] struct {
	Items      []T
	TotalCount int64
	Page       int
	Size       int
}

type AuditFilter struct {
	EventType  string
	ActionID   string
	ActionName string
	Actor      string
	Since      *time.Time
	Until      *time.Time
}

type AuditRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditFilter, page PageRequest) (PageResult[model.AuditLog], error)
}

type GuestRepository interface {
	Upsert(ctx context.Context, guest model.Guest) (model.Guest, error)
	GetByID(ctx context.Context, id string) (model.Guest, error)
	FindByName(ctx context.Context, name string) (model.Guest, error)
	FindByPhone(ctx context.Context, phone string) (model.Guest, error)
}
