package port

import (
	"context"

	"github.com/bert0h-dev/menvitta-backend/internal/core/domain"
)

// AccessLogFilter narrows audit listings.
type AccessLogFilter struct {
	UserID string
	Action string
	Method string
	Limit  int
	Offset int
}

// AccessLogRepository appends and reads immutable audit records.
type AccessLogRepository interface {
	Create(ctx context.Context, entry domain.AccessLog) error
	List(ctx context.Context, filter AccessLogFilter) ([]domain.AccessLog, error)
	GetByID(ctx context.Context, id string) (*domain.AccessLog, error)
}
