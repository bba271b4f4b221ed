package domain

import (
	"context"
	"time"
)

// AuthorizationRequest is what the browser submits to the provider's
// consent screen.
type AuthorizationRequest struct {
	Action       string
	ClientID     string
	RedirectURI  string
	ResponseType string
	State        string
}

type OAuthState struct {
	Value     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type OAuthStateRepository interface {
	Save(ctx context.Context, state OAuthState) error
	Consume(ctx context.Context, value string) (OAuthState, error)
}
