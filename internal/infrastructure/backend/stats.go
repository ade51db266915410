package backend

import (
	"context"
	"encoding/json"
	"math"
	"net/http"

	"github.com/hobbyhub/gateway/internal/domain/repository"
)

type StatsRepository struct {
	client *Client
}

func NewStatsRepository(c *Client) *StatsRepository {
	return &StatsRepository{client: c}
}

// TotalUsers accepts either a bare number or an object carrying the count.
func (r *StatsRepository) TotalUsers(ctx context.Context) (int, error) {
	var raw json.RawMessage
	err := r.client.Do(ctx, http.MethodGet, "/totalUsers", nil, nil, &raw)
	if err := r.client.degradeToEmpty(err, "/totalUsers"); err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, &Error{Kind: KindDecode, Method: http.MethodGet, Path: "/totalUsers", JSON: true, Err: err}
	}
	for _, k := range []string{"totalUsers", "count", "total"} {
		if v, ok := obj[k].(float64); ok {
			return int(v), nil
		}
	}
	return 0, nil
}

// DashboardStats keeps the numeric fields of the backend's stats document.
func (r *StatsRepository) DashboardStats(ctx context.Context) (map[string]int, error) {
	var obj map[string]any
	err := r.client.Do(ctx, http.MethodGet, "/dashboard-stats", nil, nil, &obj)
	if err := r.client.degradeToEmpty(err, "/dashboard-stats"); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(obj))
	for k, v := range obj {
		if f, ok := v.(float64); ok && !math.IsNaN(f) {
			out[k] = int(f)
		}
	}
	return out, nil
}

var _ repository.StatsRepository = (*StatsRepository)(nil)
