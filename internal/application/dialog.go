package application

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hobbyhub/gateway/internal/infrastructure/backend"
	"github.com/hobbyhub/gateway/internal/infrastructure/imagehost"
)

// DialogKind names the dialog a page shows at the end of a flow.
type DialogKind string

const (
	DialogSuccess              DialogKind = "success"
	DialogValidation           DialogKind = "validation"
	DialogUpload               DialogKind = "upload"
	DialogBusy                 DialogKind = "busy"
	DialogConfirm              DialogKind = "confirm"
	DialogNotFound             DialogKind = "not_found"
	DialogBackendNotConfigured DialogKind = "backend_not_configured"
	DialogAuthentication       DialogKind = "authentication"
	DialogServerError          DialogKind = "server_error"
	DialogServerDiagnostic     DialogKind = "server_diagnostic"
)

type Dialog struct {
	Kind    DialogKind        `json:"dialog"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Hint    string            `json:"hint,omitempty"`
	Status  int               `json:"status,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HTTPStatus is the gateway status code used when the dialog is returned as an error.
func (d Dialog) HTTPStatus() int {
	switch d.Kind {
	case DialogSuccess:
		return http.StatusOK
	case DialogValidation:
		return http.StatusBadRequest
	case DialogUpload:
		return http.StatusBadGateway
	case DialogBusy:
		return http.StatusConflict
	case DialogConfirm:
		return http.StatusPreconditionRequired
	case DialogNotFound:
		return http.StatusNotFound
	case DialogBackendNotConfigured:
		return http.StatusServiceUnavailable
	case DialogAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func successDialog(message string) Dialog {
	return Dialog{Kind: DialogSuccess, Title: "Success", Message: message}
}

func confirmDialog(message string) Dialog {
	return Dialog{Kind: DialogConfirm, Title: "Are you sure?", Message: message}
}

func authDialog() Dialog {
	return Dialog{Kind: DialogAuthentication, Title: "Authentication error", Message: "Your session could not be verified. Please log in again."}
}

// classifyLocal handles failures that happen before the backend is reached.
func classifyLocal(err error) (Dialog, bool) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return Dialog{Kind: DialogValidation, Title: "Missing information", Message: ve.Error(), Details: ve.Fields}, true
	case errors.Is(err, ErrSubmissionInFlight):
		return Dialog{Kind: DialogBusy, Title: "Please wait", Message: "Your previous request is still being processed."}, true
	case errors.Is(err, ErrLoginRequired):
		return authDialog(), true
	case errors.Is(err, ErrConfirmationRequired):
		return confirmDialog("This action cannot be undone."), true
	case errors.Is(err, backend.ErrNotFound):
		return Dialog{Kind: DialogNotFound, Title: "Not found", Message: "The item no longer exists."}, true
	}
	if ue, ok := imagehost.AsUploadError(err); ok {
		return Dialog{Kind: DialogUpload, Title: "Image upload failed", Message: ue.UserMessage(), Hint: ue.Hint(), Status: ue.Status}, true
	}
	if errors.Is(err, imagehost.ErrGCSNotConfigured) {
		return Dialog{Kind: DialogUpload, Title: "Image upload failed", Message: "Image storage is not configured."}, true
	}
	return Dialog{}, false
}

// ClassifyWrite maps a create/update failure to its dialog.
func ClassifyWrite(err error) Dialog {
	if d, ok := classifyLocal(err); ok {
		return d
	}
	be, ok := backend.AsError(err)
	if !ok {
		return Dialog{Kind: DialogServerError, Title: "Something went wrong", Message: err.Error()}
	}
	switch {
	case be.Kind == backend.KindAuth:
		d := authDialog()
		d.Status = be.Status
		return d
	case backend.IsNonJSON(err):
		return Dialog{
			Kind:    DialogBackendNotConfigured,
			Title:   "Feature not available yet",
			Message: "The server endpoint for this action is not configured. Please try again later.",
			Status:  be.Status,
		}
	default:
		return Dialog{Kind: DialogServerError, Title: "Server error", Message: serverText(be), Status: be.Status}
	}
}

// ClassifyDelete maps a delete failure to its dialog. A 500 gets the expanded
// diagnostic so the user can tell a server fault from a problem on their side.
func ClassifyDelete(err error) Dialog {
	if d, ok := classifyLocal(err); ok {
		return d
	}
	be, ok := backend.AsError(err)
	if !ok {
		return Dialog{Kind: DialogServerError, Title: "Delete failed", Message: err.Error()}
	}
	switch {
	case be.Kind == backend.KindAuth:
		d := authDialog()
		d.Status = be.Status
		return d
	case be.Status >= 500:
		return Dialog{
			Kind:    DialogServerDiagnostic,
			Title:   "Server error",
			Message: "The server failed while deleting this item. This is not a problem with your account or browser; please send the details below to support.",
			Status:  be.Status,
			Details: map[string]string{
				"origin":  "server",
				"status":  strconv.Itoa(be.Status),
				"method":  be.Method,
				"path":    be.Path,
				"message": be.Message,
			},
		}
	case be.Kind == backend.KindTransport:
		return Dialog{Kind: DialogServerError, Title: "Network error", Message: "The server could not be reached. Check your connection and try again."}
	default:
		return Dialog{
			Kind:    DialogServerError,
			Title:   "Delete failed",
			Message: serverText(be),
			Status:  be.Status,
			Details: map[string]string{"origin": "client"},
		}
	}
}

func serverText(be *backend.Error) string {
	if be.Message != "" {
		if be.Status != 0 {
			return fmt.Sprintf("%s (HTTP %d)", be.Message, be.Status)
		}
		return be.Message
	}
	if be.Status != 0 {
		return fmt.Sprintf("The server responded with HTTP %d.", be.Status)
	}
	return "The server could not be reached."
}
