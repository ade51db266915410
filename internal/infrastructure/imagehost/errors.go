package imagehost

import (
	"errors"
	"fmt"
)

// InvalidKeyCode is the image host's error code for a rejected API key.
const InvalidKeyCode = 100

// ErrorKind classifies upload failures so callers can pick a remediation message.
type ErrorKind int

const (
	KindInvalidKey ErrorKind = iota + 1
	KindBadRequest
	KindForbidden
	KindHTTP
	KindMalformed
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidKey:
		return "invalid_key"
	case KindBadRequest:
		return "bad_request"
	case KindForbidden:
		return "forbidden"
	case KindHTTP:
		return "http"
	case KindMalformed:
		return "malformed_response"
	default:
		return "unknown"
	}
}

type UploadError struct {
	Kind    ErrorKind
	Status  int
	Code    int
	Message string
	// HelpURL points at the provider's key management page.
	HelpURL string
	Err     error
}

func (e *UploadError) Error() string {
	msg := "image upload failed: " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UploadError) Unwrap() error { return e.Err }

// UserMessage is the text shown to the person who picked the image.
func (e *UploadError) UserMessage() string {
	switch e.Kind {
	case KindInvalidKey:
		return "The image service rejected our API key, so your image could not be uploaded."
	case KindBadRequest:
		return "The image service could not accept this file. Try a different image."
	case KindForbidden:
		return "The image service refused the upload. Please try again later."
	case KindHTTP:
		return fmt.Sprintf("The image service is unavailable right now (HTTP %d).", e.Status)
	case KindMalformed:
		return "The image service returned an unexpected response."
	default:
		if e.Message != "" {
			return "Image upload failed: " + e.Message
		}
		return "Image upload failed."
	}
}

// Hint returns a remediation hint, only present for invalid keys.
func (e *UploadError) Hint() string {
	if e.Kind != KindInvalidKey {
		return ""
	}
	if e.HelpURL == "" {
		return "Generate a new API key and set IMAGE_HOST_API_KEY."
	}
	return "Generate a new API key at " + e.HelpURL + " and set IMAGE_HOST_API_KEY."
}

// AsUploadError extracts an *UploadError from err.
func AsUploadError(err error) (*UploadError, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

func kindForCode(code, status int) ErrorKind {
	switch {
	case code == InvalidKeyCode:
		return KindInvalidKey
	case code == 400 || status == 400:
		return KindBadRequest
	case code == 403 || status == 403:
		return KindForbidden
	default:
		return KindUnknown
	}
}
