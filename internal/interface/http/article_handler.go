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

type ArticleHandler struct {
	Svc           *application.ArticleService
	Logger        *logrus.Logger
	MaxImageBytes int64
}

func NewArticleHandler(svc *application.ArticleService, logger *logrus.Logger, maxImageBytes int64) *ArticleHandler {
	return &ArticleHandler{Svc: svc, Logger: logger, MaxImageBytes: maxImageBytes}
}

type articleView struct {
	entity.Article
	Category string `json:"category"`
	CanEdit  bool   `json:"canEdit"`
}

func decorateArticles(items []entity.Article, user *entity.User) []articleView {
	email := ""
	if user != nil {
		email = user.Email
	}
	out := make([]articleView, 0, len(items))
	for _, a := range items {
		out = append(out, articleView{Article: a, Category: a.CategoryOrDefault(), CanEdit: a.OwnedBy(email)})
	}
	return out
}

// List handles GET /articles?q=&category=
func (h *ArticleHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), listing.ArticleFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, decorateArticles(items, middleware.CurrentUser(c)), "articles", response.ListMeta{Count: len(items)})
}

// Search handles GET /articles/search?q=&category=&size=
func (h *ArticleHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	items, err := h.Svc.SearchArticles(c.Request.Context(), c.Query("q"), c.Query("category"), size)
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, decorateArticles(items, middleware.CurrentUser(c)), "search results", response.ListMeta{Count: len(items)})
}

func (h *ArticleHandler) Categories(c *gin.Context) {
	cats, err := h.Svc.Categories(c.Request.Context())
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, append([]string{listing.AllCategories}, cats...), "categories", nil)
}

func (h *ArticleHandler) Get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, decorateArticles([]entity.Article{*a}, middleware.CurrentUser(c))[0], "article", nil)
}

func (h *ArticleHandler) Edit(c *gin.Context) {
	form, _, err := h.Svc.Edit(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, form, "article form", nil)
}

func (h *ArticleHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	items, err := h.Svc.MyArticles(c.Request.Context(), user)
	if err != nil {
		writeReadError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, decorateArticles(items, user), "my articles", response.ListMeta{Count: len(items)})
}

func (h *ArticleHandler) bindForm(c *gin.Context) (*application.ArticleForm, bool) {
	form := &application.ArticleForm{}
	form.CoverImage.MaxBytes = h.MaxImageBytes
	if err := c.ShouldBind(form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return nil, false
	}
	if !selectImage(c, "coverImage", &form.CoverImage) {
		return nil, false
	}
	return form, true
}

func (h *ArticleHandler) Create(c *gin.Context) {
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

func (h *ArticleHandler) Update(c *gin.Context) {
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

func (h *ArticleHandler) Delete(c *gin.Context) {
	out, err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), confirmed(c))
	if err != nil {
		writeFlowError(c, h.Logger, err)
		return
	}
	writeOutcome(c, http.StatusOK, out)
}
