package application

import (
	"context"
	"expvar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/domain/entity"
	repo "github.com/hobbyhub/gateway/internal/domain/repository"
)

// ActivityRecorder keeps an audit trail of user actions. Recording failures are
// logged and never fail the flow that triggered them.
type ActivityRecorder struct {
	Repo   repo.ActivityRepository
	Logger *logrus.Logger
}

func NewActivityRecorder(r repo.ActivityRepository, logger *logrus.Logger) *ActivityRecorder {
	return &ActivityRecorder{Repo: r, Logger: logger}
}

// FlowOutcomes counts recorded outcomes by "resource.action.outcome" and is
// served on /api/debug/vars.
var FlowOutcomes = expvar.NewMap("hobbyhub_flow_outcomes")

func outcomeOf(flowErr error) string {
	if flowErr == nil {
		return "success"
	}
	if fe, ok := AsFlowError(flowErr); ok {
		return "failed:" + string(fe.Dialog.Kind)
	}
	return "failed"
}

// Record counts the outcome and, when a repository is configured and the
// actor is signed in, stores it.
func (r *ActivityRecorder) Record(ctx context.Context, user *entity.User, action, resource, resourceID string, flowErr error) {
	if r == nil {
		return
	}
	outcome := outcomeOf(flowErr)
	FlowOutcomes.Add(resource+"."+action+"."+outcome, 1)
	if r.Repo == nil || user == nil {
		return
	}
	a := &entity.Activity{
		UserEmail:  user.Email,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Outcome:    outcome,
		CreatedAt:  time.Now().UTC(),
	}
	if flowErr != nil {
		a.Detail = flowErr.Error()
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := r.Repo.Record(c, a); err != nil && r.Logger != nil {
		r.Logger.WithError(err).WithFields(logrus.Fields{"action": action, "resource": resource}).Warn("activity record failed")
	}
}

// Recent lists the user's latest actions, newest first.
func (r *ActivityRecorder) Recent(ctx context.Context, user *entity.User, limit int) ([]entity.Activity, error) {
	if user == nil {
		return nil, ErrLoginRequired
	}
	if r == nil || r.Repo == nil {
		return []entity.Activity{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return r.Repo.ListByUser(ctx, user.Email, limit)
}
