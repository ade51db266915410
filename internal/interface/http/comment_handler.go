package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/application"
	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
	"github.com/hobbyhub/gateway/pkg/response"
	"github.com/hobbyhub/gateway/pkg/validation"
)

type CommentHandler struct {
	Svc    *application.CommentService
	Logger *logrus.Logger
}

func NewCommentHandler(svc *application.CommentService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Svc: svc, Logger: logger}
}

type commentView struct {
	entity.Comment
	CanDelete bool `json:"canDelete"`
}

func (h *CommentHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	email := ""
	if u := middleware.CurrentUser(c); u != nil {
		email = u.Email
	}
	out := make([]commentView, 0, len(items))
	for _, cm := range items {
		out = append(out, commentView{Comment: cm, CanDelete: cm.OwnedBy(email)})
	}
	response.Success(c, http.StatusOK, out, "comments", response.ListMeta{Count: len(out)})
}

// Create handles POST /articles/:id/comments. Anonymous visitors are allowed.
func (h *CommentHandler) Create(c *gin.Context) {
	var form application.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	out, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), &form)
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	writeOutcome(c, http.StatusCreated, out)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	out, err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), c.Param("commentId"), confirmed(c))
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	writeOutcome(c, http.StatusOK, out)
}
