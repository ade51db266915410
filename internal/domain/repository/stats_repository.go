package repository

import (
	"context"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

// StatsRepository reads the aggregate counters published by the backend.
type StatsRepository interface {
	TotalUsers(ctx context.Context) (int, error)
	DashboardStats(ctx context.Context) (map[string]int, error)
}

// ActivityRepository stores the gateway's own record of user actions.
type ActivityRepository interface {
	Record(ctx context.Context, a *entity.Activity) error
	ListByUser(ctx context.Context, email string, limit int) ([]entity.Activity, error)
}
