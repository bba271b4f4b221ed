package services

import (
	"errors"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{domain.ErrMissingCode, "missing_code"},
	{domain.ErrInvalidState, "invalid_state"},
	{domain.ErrAuthorizationDenied, "authorization_denied"},
	{domain.ErrTokenExchange, "token_exchange"},
	{domain.ErrNotAuthenticated, "not_authenticated"},
	{domain.ErrAccessForbidden, "access_forbidden"},
	{domain.ErrProviderUnavailable, "provider_unavailable"},
	{domain.ErrUnexpectedResponse, "unexpected_response"},
}

func errorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "unknown"
}
