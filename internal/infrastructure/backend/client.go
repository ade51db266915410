package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

const maxBodyBytes = 10 << 20

// Client talks to the HobbyHub REST backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Headers *HeaderBuilder
	Logger  *logrus.Logger
}

// NewHTTPClient returns an http.Client with explicit connection timeouts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    NewHTTPClient(timeout),
		Headers: NewHeaderBuilder(logger),
		Logger:  logger,
	}
}

// Do sends in (when non-nil) as JSON and decodes a JSON response into out (when non-nil).
// Headers come from the HeaderBuilder; a nil user sends an anonymous request.
func (c *Client) Do(ctx context.Context, method, path string, user *entity.User, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	for k, v := range c.Headers.Build(ctx, user) {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, Status: res.StatusCode, Err: err}
	}
	isJSON := strings.Contains(strings.ToLower(res.Header.Get("Content-Type")), "application/json")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &Error{
			Kind:    statusKind(res.StatusCode, isJSON),
			Method:  method,
			Path:    path,
			Status:  res.StatusCode,
			Message: serverMessage(raw, isJSON),
			JSON:    isJSON,
		}
	}
	if res.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if !isJSON {
		return &Error{Kind: KindNotJSON, Method: method, Path: path, Status: res.StatusCode, Message: serverMessage(raw, false)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Method: method, Path: path, Status: res.StatusCode, JSON: true, Err: err}
	}
	return nil
}

func statusKind(status int, isJSON bool) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case !isJSON:
		return KindNotJSON
	case status >= 500:
		return KindServer
	default:
		return KindStatus
	}
}

// serverMessage pulls a human readable message out of an error body.
func serverMessage(raw []byte, isJSON bool) string {
	if isJSON {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(raw, &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			if payload.Error != "" {
				return payload.Error
			}
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// WriteResult is the acknowledgement the backend returns for mutations.
// Both the {success,message} and Mongo-style {insertedId,...} shapes occur.
type WriteResult struct {
	Success       *bool  `json:"success,omitempty"`
	Message       string `json:"message,omitempty"`
	InsertedID    string `json:"insertedId,omitempty"`
	ID            string `json:"_id,omitempty"`
	ModifiedCount int    `json:"modifiedCount,omitempty"`
	DeletedCount  int    `json:"deletedCount,omitempty"`
}

// NewID returns the identifier assigned by the backend, if any.
func (w WriteResult) NewID() string {
	if w.InsertedID != "" {
		return w.InsertedID
	}
	return w.ID
}

// write performs a mutation and rejects explicit {success:false} acknowledgements.
func (c *Client) write(ctx context.Context, method, path string, user *entity.User, in any) (WriteResult, error) {
	var res WriteResult
	if err := c.Do(ctx, method, path, user, in, &res); err != nil {
		return res, err
	}
	if res.Success != nil && !*res.Success {
		return res, &Error{Kind: KindRejected, Method: method, Path: path, Message: res.Message, JSON: true}
	}
	return res, nil
}

// degradeToEmpty swallows non-JSON answers on read paths, logging them.
func (c *Client) degradeToEmpty(err error, path string) error {
	if err == nil {
		return nil
	}
	if IsNonJSON(err) {
		c.Logger.WithField("path", path).Warn("backend returned non-json response; treating as empty")
		return nil
	}
	return err
}

var errMissingID = errors.New("missing resource id")
