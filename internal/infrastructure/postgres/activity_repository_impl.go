package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

// ActivityRepository stores the gateway's audit trail in the activity_log table.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Record(ctx context.Context, a *entity.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO activity_log (id, user_email, action, resource, resource_id, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, a.ID, strings.ToLower(a.UserEmail), a.Action, a.Resource, a.ResourceID, a.Outcome, a.Detail, a.CreatedAt)

	return row.Scan(&a.CreatedAt)
}

func (r *ActivityRepository) ListByUser(ctx context.Context, email string, limit int) ([]entity.Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_email, action, resource, resource_id, outcome, detail, created_at
		FROM activity_log
		WHERE lower(user_email) = lower($1)
		ORDER BY created_at DESC
		LIMIT $2
	`, email, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Activity, error) {
		var a entity.Activity
		err := row.Scan(&a.ID, &a.UserEmail, &a.Action, &a.Resource, &a.ResourceID,
			&a.Outcome, &a.Detail, &a.CreatedAt)
		return a, err
	})
}
