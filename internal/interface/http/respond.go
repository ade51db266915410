package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/application"
	"github.com/hobbyhub/gateway/internal/domain/entity"
	"github.com/hobbyhub/gateway/internal/infrastructure/backend"
	"github.com/hobbyhub/gateway/pkg/response"
)

// flowMeta is attached to every flow response so the page can show the dialog
// and follow the redirect.
type flowMeta struct {
	Dialog    application.Dialog  `json:"dialog"`
	Redirect  string              `json:"redirect,omitempty"`
	RemovedID string              `json:"removed_id,omitempty"`
	Trace     []application.Phase `json:"trace"`
}

type flowFailure struct {
	application.Dialog
	Phase application.Phase   `json:"phase"`
	Trace []application.Phase `json:"trace"`
}

func writeOutcome[T any](c *gin.Context, status int, out application.Outcome[T]) {
	response.Success(c, status, out.Item, out.Dialog.Message, flowMeta{
		Dialog:    out.Dialog,
		Redirect:  out.Redirect,
		RemovedID: out.RemovedID,
		Trace:     out.Trace,
	})
}

func writeFlowError(c *gin.Context, logger *logrus.Logger, err error) {
	fe, ok := application.AsFlowError(err)
	if !ok {
		writeReadError(c, logger, err)
		return
	}
	response.Error[any](c, fe.Dialog.HTTPStatus(), fe.Dialog.Message, flowFailure{Dialog: fe.Dialog, Phase: fe.Phase, Trace: fe.Trace})
}

// writeReadError maps a failed read to a status code.
func writeReadError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, application.ErrLoginRequired):
		response.Error[any](c, http.StatusUnauthorized, "login required", nil)
		return
	case backend.IsMissing(err):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
		return
	case backend.IsKind(err, backend.KindAuth):
		response.Error[any](c, http.StatusUnauthorized, "the backend rejected the session", nil)
		return
	}
	if logger != nil {
		logger.WithError(err).WithField("path", c.FullPath()).Error("backend read failed")
	}
	response.Error[any](c, http.StatusBadGateway, "backend request failed", err.Error())
}

// readImage reads an optional multipart image. A missing part returns nil.
// At most limit+1 bytes are read so an oversized file is still rejected by size.
func readImage(c *gin.Context, field string, limit int64) (*entity.ImageFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	return imageFromHeader(fh, limit)
}

func imageFromHeader(fh *multipart.FileHeader, limit int64) (*entity.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	if limit <= 0 {
		limit = application.DefaultMaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	return &entity.ImageFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}

// selectImage reads field into sel. A rejected file is reported as a
// validation dialog before any flow runs.
func selectImage(c *gin.Context, field string, sel *application.ImageSelection) bool {
	file, err := readImage(c, field, sel.MaxBytes)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid upload", err.Error())
		return false
	}
	if file == nil {
		return true
	}
	if err := sel.Select(file); err != nil {
		d := application.ClassifyWrite(err)
		response.Error[any](c, d.HTTPStatus(), d.Message, d)
		return false
	}
	return true
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}
