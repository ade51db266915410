package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/application"
	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/domain/listing"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
	"github.com/hobbyhub/gateway/pkg/response"
	"github.com/hobbyhub/gateway/pkg/validation"
)

type GroupHandler struct {
	Svc           *application.GroupService
	Logger        *logrus.Logger
	MaxImageBytes int64
}

func NewGroupHandler(svc *application.GroupService, logger *logrus.Logger, maxImageBytes int64) *GroupHandler {
	return &GroupHandler{Svc: svc, Logger: logger, MaxImageBytes: maxImageBytes}
}

type groupView struct {
	entity.Group
	CanEdit bool `json:"canEdit"`
}

func decorateGroups(items []entity.Group, user *entity.User) []groupView {
	email := ""
	if user != nil {
		email = user.Email
	}
	out := make([]groupView, 0, len(items))
	for _, g := range items {
		out = append(out, groupView{Group: g, CanEdit: g.OwnedBy(email)})
	}
	return out
}

// List handles GET /groups?q=&category=&upcoming=
func (h *GroupHandler) List(c *gin.Context) {
	upcoming, _ := strconv.ParseBool(c.Query("upcoming"))
	items, err := h.Svc.List(c.Request.Context(), listing.GroupFilter{
		Category:     c.Query("category"),
		Query:        c.Query("q"),
		UpcomingOnly: upcoming,
	})
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, decorateGroups(items, middleware.CurrentUser(c)), "groups", response.ListMeta{Count: len(items)})
}

func (h *GroupHandler) Get(c *gin.Context) {
	g, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, decorateGroups([]entity.Group{*g}, middleware.CurrentUser(c))[0], "group", nil)
}

// Edit returns the pre-populated update form.
func (h *GroupHandler) Edit(c *gin.Context) {
	form, _, err := h.Svc.Edit(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, form, "group form", nil)
}

func (h *GroupHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	items, err := h.Svc.MyGroups(c.Request.Context(), user)
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, decorateGroups(items, user), "my groups", response.ListMeta{Count: len(items)})
}

func (h *GroupHandler) Joined(c *gin.Context) {
	user := middleware.CurrentUser(c)
	items, err := h.Svc.JoinedGroups(c.Request.Context(), user)
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, decorateGroups(items, user), "joined groups", response.ListMeta{Count: len(items)})
}

func (h *GroupHandler) bindForm(c *gin.Context) (*application.GroupForm, bool) {
	form := &application.GroupForm{}
	form.Image.MaxBytes = h.MaxImageBytes
	if err := c.ShouldBind(form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return nil, false
	}
	if !selectImage(c, "image", &form.Image) {
		return nil, false
	}
	return form, true
}

// Create handles POST /groups as JSON or multipart with an optional image part.
func (h *GroupHandler) Create(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	out, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), form)
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	writeOutcome(c, http.StatusCreated, out)
}

func (h *GroupHandler) Update(c *gin.Context) {
	form, ok := h.bindForm(c)
	if !ok {
		return
	}
	out, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), form)
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	writeOutcome(c, http.StatusOK, out)
}

// Delete handles DELETE /groups/:id?confirm=true
func (h *GroupHandler) Delete(c *gin.Context) {
	out, err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), confirmed(c))
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	writeOutcome(c, http.StatusOK, out)
}

func (h *GroupHandler) Join(c *gin.Context) {
	out, err := h.Svc.Join(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	writeOutcome(c, http.StatusCreated, out)
}

func (h *GroupHandler) Leave(c *gin.Context) {
	out, err := h.Svc.Leave(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), confirmed(c))
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	writeOutcome(c, http.StatusOK, out)
}
