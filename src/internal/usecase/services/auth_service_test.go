package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/bank-viewer/src/internal/adapter/http/models"
	"github.com/api-sage/bank-viewer/src/internal/adapter/repository/memory"
	"github.com/api-sage/bank-viewer/src/internal/domain"
	"github.com/api-sage/bank-viewer/src/internal/usecase/services"
)

type authFixture struct {
	provider *fakeProvider
	tokens   *memory.TokenStore
	states   *memory.OAuthStateRepository
	audits   *memory.ExchangeAuditRepository
	svc      *services.AuthService
}

func newAuthFixture() authFixture {
	f := authFixture{
		provider: &fakeProvider{},
		tokens:   memory.NewTokenStore(),
		states:   memory.NewOAuthStateRepository(time.Minute),
		audits:   memory.NewExchangeAuditRepository(10),
	}
	f.svc = services.NewAuthService(f.provider, f.tokens, f.states, f.audits)
	return f
}

func TestAuthServiceSignInRendersForm(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.SignIn(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "client-1", resp.Data.ClientID)
	assert.Equal(t, "http://localhost:3000/oauth/callback", resp.Data.RedirectURI)
	assert.Equal(t, "code", resp.Data.ResponseType)
	assert.NotEmpty(t, resp.Data.State)
	assert.False(t, resp.Data.Authenticated)

	_, err = f.states.Consume(context.Background(), resp.Data.State)
	assert.NoError(t, err, "issued state must be redeemable")
}

func TestAuthServiceSignInWhenAuthenticated(t *testing.T) {
	f := newAuthFixture()
	f.tokens.Set(context.Background(), domain.Credential{TokenType: "Bearer", AccessToken: "tok"})

	resp, err := f.svc.SignIn(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Data.Authenticated)
	assert.Equal(t, "client-1", resp.Data.ClientID)
}

func TestAuthServiceSignInIssuesDistinctStates(t *testing.T) {
	f := newAuthFixture()

	first, err := f.svc.SignIn(context.Background())
	require.NoError(t, err)
	second, err := f.svc.SignIn(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.Data.State, second.Data.State)
}

func TestAuthServiceCompleteSignInStoresCredential(t *testing.T) {
	f := newAuthFixture()
	f.provider.exchangeCred = domain.Credential{TokenType: "Bearer", AccessToken: "tok-1", UserID: "user_1"}

	resp, err := f.svc.CompleteSignIn(context.Background(), models.OAuthCallbackRequest{Code: "code-1"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"code-1"}, f.provider.exchangedCodes)

	cred, ok := f.tokens.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, "Bearer", cred.TokenType)
	assert.Equal(t, "tok-1", cred.AccessToken)

	audits, err := f.audits.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, domain.ExchangeOutcomeSucceeded, audits[0].Outcome)
	assert.Equal(t, "user_1", audits[0].ProviderUserID)
	assert.NotEmpty(t, audits[0].TokenFingerprint)
	assert.NotContains(t, audits[0].TokenFingerprint, "tok-1")
}

func TestAuthServiceCompleteSignInOverwrites(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.tokens.Set(ctx, domain.Credential{TokenType: "Bearer", AccessToken: "old"})
	f.provider.exchangeCred = domain.Credential{TokenType: "Bearer", AccessToken: "new"}

	_, err := f.svc.CompleteSignIn(ctx, models.OAuthCallbackRequest{Code: "code"})
	require.NoError(t, err)

	cred, _ := f.tokens.Get(ctx)
	assert.Equal(t, "new", cred.AccessToken)
}

func TestAuthServiceCompleteSignInWithIssuedState(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.provider.exchangeCred = domain.Credential{TokenType: "Bearer", AccessToken: "tok"}

	page, err := f.svc.SignIn(ctx)
	require.NoError(t, err)

	_, err = f.svc.CompleteSignIn(ctx, models.OAuthCallbackRequest{Code: "code", State: page.Data.State})
	require.NoError(t, err)

	_, err = f.svc.CompleteSignIn(ctx, models.OAuthCallbackRequest{Code: "code", State: page.Data.State})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "state must not be reusable")
}

func TestAuthServiceCompleteSignInUnknownState(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.CompleteSignIn(context.Background(), models.OAuthCallbackRequest{Code: "code", State: "forged"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.False(t, resp.Success)
	assert.Empty(t, f.provider.exchangedCodes)

	_, ok := f.tokens.Get(context.Background())
	assert.False(t, ok)
}

func TestAuthServiceCompleteSignInMissingCode(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.CompleteSignIn(context.Background(), models.OAuthCallbackRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingCode)
	assert.Empty(t, f.provider.exchangedCodes)

	audits, _ := f.audits.ListRecent(context.Background(), 1)
	require.Len(t, audits, 1)
	assert.Equal(t, domain.ExchangeOutcomeRejected, audits[0].Outcome)
	assert.Equal(t, "missing_code", audits[0].ErrorKind)
}

func TestAuthServiceCompleteSignInDenied(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.CompleteSignIn(context.Background(), models.OAuthCallbackRequest{
		Error:            "access_denied",
		ErrorDescription: "user declined",
	})
	assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)
	assert.Equal(t, []string{"user declined"}, resp.Errors)

	audits, _ := f.audits.ListRecent(context.Background(), 1)
	require.Len(t, audits, 1)
	assert.Equal(t, "authorization_denied", audits[0].ErrorKind)
}

func TestAuthServiceCompleteSignInExchangeFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome domain.ExchangeOutcome
		kind    string
	}{
		{"rejected", domain.ErrTokenExchange, domain.ExchangeOutcomeRejected, "token_exchange"},
		{"unavailable", domain.ErrProviderUnavailable, domain.ExchangeOutcomeFailed, "provider_unavailable"},
		{"malformed", domain.ErrUnexpectedResponse, domain.ExchangeOutcomeFailed, "unexpected_response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			f.provider.exchangeErr = fmt.Errorf("exchange: %w", tt.err)

			resp, err := f.svc.CompleteSignIn(context.Background(), models.OAuthCallbackRequest{Code: "code"})
			assert.ErrorIs(t, err, tt.err)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Errors)

			_, ok := f.tokens.Get(context.Background())
			assert.False(t, ok)

			audits, _ := f.audits.ListRecent(context.Background(), 1)
			require.Len(t, audits, 1)
			assert.Equal(t, tt.outcome, audits[0].Outcome)
			assert.Equal(t, tt.kind, audits[0].ErrorKind)
		})
	}
}

func TestAuthServiceAuditFailureDoesNotFailSignIn(t *testing.T) {
	provider := &fakeProvider{exchangeCred: domain.Credential{TokenType: "Bearer", AccessToken: "tok"}}
	tokens := memory.NewTokenStore()
	svc := services.NewAuthService(provider, tokens, memory.NewOAuthStateRepository(time.Minute), failingAudits{})

	_, err := svc.CompleteSignIn(context.Background(), models.OAuthCallbackRequest{Code: "code"})
	require.NoError(t, err)

	_, ok := tokens.Get(context.Background())
	assert.True(t, ok)
}
