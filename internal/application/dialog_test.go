package application

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyhub/gateway/internal/infrastructure/backend"
	"github.com/hobbyhub/gateway/internal/infrastructure/imagehost"
)

func TestClassifyWrite(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		kind   DialogKind
		status int
	}{
		{"validation", invalid("title", "is required"), DialogValidation, http.StatusBadRequest},
		{"busy", ErrSubmissionInFlight, DialogBusy, http.StatusConflict},
		{"login", ErrLoginRequired, DialogAuthentication, http.StatusUnauthorized},
		{"not json", &backend.Error{Kind: backend.KindNotJSON, Status: 200}, DialogBackendNotConfigured, http.StatusServiceUnavailable},
		{"route missing", &backend.Error{Kind: backend.KindNotFound, Status: 404}, DialogBackendNotConfigured, http.StatusServiceUnavailable},
		{"json not found", &backend.Error{Kind: backend.KindNotFound, Status: 404, Message: "group not found", JSON: true}, DialogServerError, http.StatusBadGateway},
		{"auth", &backend.Error{Kind: backend.KindAuth, Status: 403}, DialogAuthentication, http.StatusUnauthorized},
		{"server", &backend.Error{Kind: backend.KindServer, Status: 500, Message: "db down", JSON: true}, DialogServerError, http.StatusBadGateway},
		{"decode", &backend.Error{Kind: backend.KindDecode, Status: 200, JSON: true}, DialogServerError, http.StatusBadGateway},
		{"upload", &imagehost.UploadError{Kind: imagehost.KindInvalidKey, Code: 100}, DialogUpload, http.StatusBadGateway},
		{"gcs", imagehost.ErrGCSNotConfigured, DialogUpload, http.StatusBadGateway},
		{"html error page", &backend.Error{Kind: backend.KindNotJSON, Status: 500}, DialogBackendNotConfigured, http.StatusServiceUnavailable},
		{"plain", errors.New("boom"), DialogServerError, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := ClassifyWrite(fmt.Errorf("wrapped: %w", tc.err))
			assert.Equal(t, tc.kind, d.Kind)
			assert.Equal(t, tc.status, d.HTTPStatus())
		})
	}
}

func TestClassifyWrite_ServerMessageIncludesStatus(t *testing.T) {
	d := ClassifyWrite(&backend.Error{Kind: backend.KindServer, Status: 502, Message: "upstream", JSON: true})
	assert.Equal(t, "upstream (HTTP 502)", d.Message)
}

func TestClassifyWrite_JSONNotFoundKeepsServerMessage(t *testing.T) {
	d := ClassifyWrite(&backend.Error{Kind: backend.KindNotFound, Status: 404, Message: "group not found", JSON: true})
	assert.Equal(t, DialogServerError, d.Kind)
	assert.Contains(t, d.Message, "group not found")
	assert.Equal(t, 404, d.Status)
}

func TestClassifyDelete(t *testing.T) {
	t.Run("server fault is diagnosed", func(t *testing.T) {
		d := ClassifyDelete(&backend.Error{Kind: backend.KindServer, Method: "DELETE", Path: "/articles/a1", Status: 500, Message: "cast error"})
		assert.Equal(t, DialogServerDiagnostic, d.Kind)
		assert.Equal(t, map[string]string{
			"origin": "server", "status": "500", "method": "DELETE", "path": "/articles/a1", "message": "cast error",
		}, d.Details)
	})

	t.Run("non json 5xx is still a server fault", func(t *testing.T) {
		d := ClassifyDelete(&backend.Error{Kind: backend.KindNotJSON, Status: 503})
		assert.Equal(t, DialogServerDiagnostic, d.Kind)
	})

	t.Run("client side status", func(t *testing.T) {
		d := ClassifyDelete(&backend.Error{Kind: backend.KindStatus, Status: 400, Message: "bad id"})
		assert.Equal(t, DialogServerError, d.Kind)
		assert.Equal(t, "client", d.Details["origin"])
	})

	t.Run("transport", func(t *testing.T) {
		d := ClassifyDelete(&backend.Error{Kind: backend.KindTransport})
		assert.Equal(t, "Network error", d.Title)
	})

	t.Run("auth", func(t *testing.T) {
		assert.Equal(t, DialogAuthentication, ClassifyDelete(&backend.Error{Kind: backend.KindAuth, Status: 401}).Kind)
	})
}

func TestFlowErrorCarriesTrace(t *testing.T) {
	f := newFlow()
	f.enter(PhaseValidating)
	f.enter(PhaseSubmitting)
	err := f.fail(errors.New("x"), Dialog{Kind: DialogServerError, Title: "Server error"})

	fe, ok := AsFlowError(fmt.Errorf("outer: %w", err))
	require.True(t, ok)
	assert.Equal(t, PhaseSubmitting, fe.Phase)
	assert.Equal(t, []Phase{PhaseIdle, PhaseValidating, PhaseSubmitting, PhaseFailed}, fe.Trace)
	assert.Contains(t, fe.Error(), "while submitting")
}

func TestGuard(t *testing.T) {
	g := NewGuard()
	release, err := g.Acquire("k")
	require.NoError(t, err)

	_, err = g.Acquire("k")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	_, err = g.Acquire("other")
	assert.NoError(t, err)

	release()
	_, err = g.Acquire("k")
	assert.NoError(t, err)

	var nilGuard *Guard
	rel, err := nilGuard.Acquire("k")
	require.NoError(t, err)
	rel()
}
