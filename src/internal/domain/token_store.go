package domain

import "context"

// TokenStore holds at most one credential for the whole process.
type TokenStore interface {
	Get(ctx context.Context) (Credential, bool)
	Set(ctx context.Context, credential Credential)
}
