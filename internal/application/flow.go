package application

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrLoginRequired        = errors.New("login required")
	ErrSubmissionInFlight   = errors.New("submission already in progress")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// Phase is a step of a create/update/delete flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseUploading
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseUploading:
		return "uploading"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Outcome is what a successful flow hands back to the page.
type Outcome[T any] struct {
	Item      T       `json:"item"`
	Redirect  string  `json:"redirect,omitempty"`
	RemovedID string  `json:"removed_id,omitempty"`
	Dialog    Dialog  `json:"dialog"`
	Trace     []Phase `json:"trace"`
}

// FlowError is returned by every failed flow. Dialog is already classified for display.
type FlowError struct {
	Phase  Phase
	Trace  []Phase
	Dialog Dialog
	Err    error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s failed while %s: %v", strings.ToLower(e.Dialog.Title), e.Phase, e.Err)
}

func (e *FlowError) Unwrap() error { return e.Err }

// AsFlowError extracts a *FlowError from err.
func AsFlowError(err error) (*FlowError, bool) {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// flow records the phases a single submission passes through.
type flow struct {
	trace []Phase
}

func newFlow() *flow { return &flow{trace: []Phase{PhaseIdle}} }

func (f *flow) enter(p Phase) { f.trace = append(f.trace, p) }

func (f *flow) current() Phase { return f.trace[len(f.trace)-1] }

func (f *flow) fail(err error, d Dialog) error {
	at := f.current()
	f.enter(PhaseFailed)
	return &FlowError{Phase: at, Trace: f.trace, Dialog: d, Err: err}
}

func succeed[T any](f *flow, item T, d Dialog) Outcome[T] {
	f.enter(PhaseSucceeded)
	return Outcome[T]{Item: item, Dialog: d, Trace: f.trace}
}

// Guard rejects a second submission of the same operation while the first is in flight.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inFlight: map[string]struct{}{}}
}

// Acquire reserves key and returns the release func.
func (g *Guard) Acquire(key string) (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[key]; busy {
		return nil, ErrSubmissionInFlight
	}
	g.inFlight[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}, nil
}

func guardKey(email, op, id string) string {
	return strings.ToLower(email) + "|" + op + "|" + id
}
