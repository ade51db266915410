package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/application"
	"github.com/hobbyhub/gateway/internal/interface/middleware"
	"github.com/hobbyhub/gateway/pkg/response"
)

// UploadHandler exposes the image pipeline on its own so a page can upload
// before submitting a form.
type UploadHandler struct {
	Uploader      application.ImageUploader
	Logger        *logrus.Logger
	MaxImageBytes int64
}

func NewUploadHandler(up application.ImageUploader, logger *logrus.Logger, maxImageBytes int64) *UploadHandler {
	return &UploadHandler{Uploader: up, Logger: logger, MaxImageBytes: maxImageBytes}
}

// Image handles POST /uploads/image with a multipart "image" part.
func (h *UploadHandler) Image(c *gin.Context) {
	sel := application.ImageSelection{MaxBytes: h.MaxImageBytes}
	if !selectImage(c, "image", &sel) {
		return
	}
	file := sel.Selected()
	if file == nil {
		response.Error[any](c, http.StatusBadRequest, "image is required", map[string]string{"image": "is required"})
		return
	}
	if h.Uploader == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "image uploads are not configured", nil)
		return
	}
	url, err := h.Uploader.Upload(c.Request.Context(), *file)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("email", c.GetString(middleware.CtxUserEmailKey)).Error("image upload failed")
		}
		d := application.ClassifyWrite(err)
		response.Error[any](c, d.HTTPStatus(), d.Message, d)
		return
	}
	response.Success(c, http.StatusCreated, map[string]string{"url": url}, "image uploaded", nil)
}
