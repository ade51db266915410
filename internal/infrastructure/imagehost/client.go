package imagehost

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hobbyhub/gateway/internal/domain/entity"
)

type encoding int

const (
	encodingBinary encoding = iota
	encodingBase64
)

func (e encoding) String() string {
	if e == encodingBase64 {
		return "base64"
	}
	return "binary"
}

// Client uploads images to an ImgBB-compatible host.
type Client struct {
	Endpoint   string
	APIKey     string
	Expiration int
	HelpURL    string
	HTTP       *http.Client
	Logger     *logrus.Logger
}

func NewClient(endpoint, apiKey string, expiration int, helpURL string, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		Expiration: expiration,
		HelpURL:    helpURL,
		HTTP:       &http.Client{Timeout: 60 * time.Second},
		Logger:     logger,
	}
}

type hostResponse struct {
	Success *bool `json:"success"`
	Status  int   `json:"status"`
	Data    *struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error *struct {
		ID      json.Number `json:"id"`
		Code    json.Number `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

// Upload sends the image as binary. When the host reports an invalid API key it
// retries exactly once with a base64 payload; no other failure is retried.
func (c *Client) Upload(ctx context.Context, file entity.ImageFile) (string, error) {
	link, err := c.send(ctx, file, encodingBinary)
	if ue, ok := AsUploadError(err); ok && ue.Kind == KindInvalidKey {
		c.Logger.WithField("filename", file.Filename).Warn("image host rejected binary upload key; retrying as base64")
		link, err = c.send(ctx, file, encodingBase64)
	}
	return link, err
}

func (c *Client) uploadURL() (string, error) {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("expiration", strconv.Itoa(c.Expiration))
	q.Set("key", c.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) send(ctx context.Context, file entity.ImageFile, enc encoding) (string, error) {
	target, err := c.uploadURL()
	if err != nil {
		return "", &UploadError{Kind: KindUnknown, Err: err}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	switch enc {
	case encodingBase64:
		err = mw.WriteField("image", base64.StdEncoding.EncodeToString(file.Data))
	default:
		var fw io.Writer
		name := file.Filename
		if name == "" {
			name = "upload"
		}
		if fw, err = mw.CreateFormFile("image", name); err == nil {
			_, err = fw.Write(file.Data)
		}
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return "", &UploadError{Kind: KindUnknown, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return "", &UploadError{Kind: KindUnknown, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", &UploadError{Kind: KindHTTP, Err: err}
	}
	defer func() { _ = res.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", &UploadError{Kind: KindHTTP, Status: res.StatusCode, Err: err}
	}

	var parsed hostResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if decodeErr == nil && parsed.Error != nil {
		code := errorCode(parsed.Error.Code, parsed.Error.ID)
		return "", &UploadError{
			Kind:    kindForCode(code, res.StatusCode),
			Status:  res.StatusCode,
			Code:    code,
			Message: parsed.Error.Message,
			HelpURL: c.HelpURL,
		}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &UploadError{Kind: KindHTTP, Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
	}
	if decodeErr != nil || parsed.Success == nil || !*parsed.Success || parsed.Data == nil || parsed.Data.URL == "" {
		return "", &UploadError{Kind: KindMalformed, Status: res.StatusCode, Err: decodeErr}
	}
	c.Logger.WithFields(logrus.Fields{"filename": file.Filename, "encoding": enc.String()}).Debug("image uploaded")
	return parsed.Data.URL, nil
}

func errorCode(nums ...json.Number) int {
	for _, n := range nums {
		if n == "" {
			continue
		}
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}
