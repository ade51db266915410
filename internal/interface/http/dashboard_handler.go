package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/application"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
	"github.com/hobbyhub/gateway/pkg/response"
)

type DashboardHandler struct {
	Svc      *application.DashboardService
	Activity *application.ActivityRecorder
	Logger   *logrus.Logger
}

func NewDashboardHandler(svc *application.DashboardService, activity *application.ActivityRecorder, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{Svc: svc, Activity: activity, Logger: logger}
}

// Stats handles the public GET /stats.
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.SiteStats(c.Request.Context())
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, stats, "stats", nil)
}

func (h *DashboardHandler) Mine(c *gin.Context) {
	stats, err := h.Svc.ForUser(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, stats, "dashboard", nil)
}

// RecentActivity handles GET /me/activity?limit=
func (h *DashboardHandler) RecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.Activity.Recent(c.Request.Context(), middleware.CurrentUser(c), limit)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("activity lookup failed")
		}
		writeReadError(c, nil, err)
		return
	}
	response.Success(c, http.StatusOK, items, "activity", response.ListMeta{Count: len(items)})
}
