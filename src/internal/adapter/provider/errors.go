package provider

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

// Error describes a failed provider call. Kind is one of the domain
// sentinels so callers can branch with errors.Is.
type Error struct {
	Op      string
	Status  int
	Code    string
	Message string
	Kind    error
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("provider: ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if detail := e.detail(); detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) detail() string {
	switch {
	case e.Code != "" && e.Message != "":
		return e.Code + " " + e.Message
	case e.Message != "":
		return e.Message
	default:
		return e.Code
	}
}

// statusKind classifies a non-2xx response from a resource endpoint.
func statusKind(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ErrNotAuthenticated
	case status == http.StatusForbidden:
		return domain.ErrAccessForbidden
	case status >= http.StatusInternalServerError:
		return domain.ErrProviderUnavailable
	default:
		return domain.ErrUnexpectedResponse
	}
}

// tokenStatusKind classifies a non-2xx response from the token endpoint.
func tokenStatusKind(status int) error {
	if status >= http.StatusInternalServerError {
		return domain.ErrProviderUnavailable
	}
	return domain.ErrTokenExchange
}
