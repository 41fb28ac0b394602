package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned for any 401 from the patient API. The
	// session has already been cleared when a caller sees it.
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid view transition")
	ErrPatientNotFound   = errors.New("patient not found")
)

// TransportError is a network or HTTP failure other than 401.
// StatusCode is 0 when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError carries one message per failing form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

const (
	MsgLoginFailed    = "Login failed. Please check your credentials."
	MsgFillAllFields  = "Please fill in all fields"
	MsgSaveFailed     = "Failed to save patient. Please try again."
	MsgDeleteFailed   = "Failed to delete patient. Please try again."
	MsgFetchFailed    = "Failed to fetch patients. Please try again."
	MsgSessionExpired = "Your session has expired. Please sign in again."
)

// UserMessage maps err to a message fit for display. fallback is used for
// transport failures, whose wording depends on the operation.
func UserMessage(err error, fallback string) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return MsgLoginFailed
	case errors.Is(err, ErrUnauthorized):
		return MsgSessionExpired
	case errors.As(err, &verr):
		if msg, ok := verr.Fields["form"]; ok {
			return msg
		}
		return "Please correct the highlighted fields"
	default:
		return fallback
	}
}
