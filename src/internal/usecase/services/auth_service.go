package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/api-sage/bank-viewer/src/internal/adapter/http/models"
	"github.com/api-sage/bank-viewer/src/internal/commons"
	"github.com/api-sage/bank-viewer/src/internal/domain"
	"github.com/api-sage/bank-viewer/src/internal/logger"
	"github.com/api-sage/bank-viewer/src/internal/usecase/service_interfaces"
)

type AuthService struct {
	provider service_interfaces.ProviderClient
	tokens   domain.TokenStore
	states   domain.OAuthStateRepository
	audits   domain.ExchangeAuditRepository
}

func NewAuthService(
	provider service_interfaces.ProviderClient,
	tokens domain.TokenStore,
	states domain.OAuthStateRepository,
	audits domain.ExchangeAuditRepository,
) *AuthService {
	return &AuthService{
		provider: provider,
		tokens:   tokens,
		states:   states,
		audits:   audits,
	}
}

// SignIn issues a fresh oauth state and builds the sign-in form. It renders
// the same form whether or not a credential is already held.
func (s *AuthService) SignIn(ctx context.Context) (commons.Response[models.SignInPage], error) {
	state, err := generateState()
	if err != nil {
		logger.Error("auth service sign in state generation failed", err, nil)
		return commons.ErrorResponse[models.SignInPage]("unable to start sign-in", "Please try again"), err
	}

	if err := s.states.Save(ctx, domain.OAuthState{Value: state}); err != nil {
		logger.Error("auth service sign in state save failed", err, nil)
		return commons.ErrorResponse[models.SignInPage]("unable to start sign-in", "Please try again"), err
	}

	_, authenticated := s.tokens.Get(ctx)
	authReq := s.provider.AuthorizationRequest(state)

	return commons.SuccessResponse("Hello", models.SignInPage{
		Action:        authReq.Action,
		ClientID:      authReq.ClientID,
		RedirectURI:   authReq.RedirectURI,
		ResponseType:  authReq.ResponseType,
		State:         authReq.State,
		Authenticated: authenticated,
	}), nil
}

// CompleteSignIn exchanges the authorization code and stores the resulting
// credential, replacing any previous one.
func (s *AuthService) CompleteSignIn(ctx context.Context, req models.OAuthCallbackRequest) (commons.Response[models.OAuthCallbackResponse], error) {
	logger.Info("auth service complete sign in request", logger.Fields{
		"hasCode":  req.Code != "",
		"hasState": req.State != "",
		"error":    req.Error,
	})

	if req.Error != "" {
		err := fmt.Errorf("%w: %s", domain.ErrAuthorizationDenied, req.Error)
		s.audit(ctx, domain.ExchangeAudit{Outcome: domain.ExchangeOutcomeRejected, ErrorKind: "authorization_denied"})
		detail := req.ErrorDescription
		if detail == "" {
			detail = req.Error
		}
		return commons.ErrorResponse[models.OAuthCallbackResponse]("sign-in was not approved", detail), err
	}

	if err := req.Validate(); err != nil {
		s.audit(ctx, domain.ExchangeAudit{Outcome: domain.ExchangeOutcomeRejected, ErrorKind: "missing_code"})
		return commons.ErrorResponse[models.OAuthCallbackResponse]("sign-in failed", err.Error()), fmt.Errorf("%w: %v", domain.ErrMissingCode, err)
	}

	if req.State != "" {
		if _, err := s.states.Consume(ctx, req.State); err != nil {
			logger.Error("auth service complete sign in state rejected", err, nil)
			s.audit(ctx, domain.ExchangeAudit{Outcome: domain.ExchangeOutcomeRejected, ErrorKind: "invalid_state"})
			return commons.ErrorResponse[models.OAuthCallbackResponse]("sign-in failed", "The sign-in link has expired, please start again"), err
		}
	}

	cred, err := s.provider.ExchangeCode(ctx, req.Code)
	if err != nil {
		logger.Error("auth service complete sign in exchange failed", err, nil)
		outcome := domain.ExchangeOutcomeFailed
		if errors.Is(err, domain.ErrTokenExchange) {
			outcome = domain.ExchangeOutcomeRejected
		}
		s.audit(ctx, domain.ExchangeAudit{Outcome: outcome, ErrorKind: errorKind(err)})
		return commons.ErrorResponse[models.OAuthCallbackResponse]("sign-in failed", exchangeErrorDetail(err)), err
	}

	s.tokens.Set(ctx, cred)
	s.audit(ctx, domain.ExchangeAudit{
		Outcome:          domain.ExchangeOutcomeSucceeded,
		TokenType:        cred.TokenType,
		TokenFingerprint: logger.Fingerprint(cred.AccessToken),
		ProviderUserID:   cred.UserID,
	})

	logger.Info("auth service complete sign in success", logger.Fields{
		"tokenType":   cred.TokenType,
		"userId":      cred.UserID,
		"fingerprint": logger.Fingerprint(cred.AccessToken),
	})

	return commons.SuccessResponse("Signed in", models.OAuthCallbackResponse{
		TokenType: cred.TokenType,
		UserID:    cred.UserID,
		ExpiresAt: cred.ExpiresAt,
	}), nil
}

// audit never fails the sign-in; a lost audit row is only logged.
func (s *AuthService) audit(ctx context.Context, entry domain.ExchangeAudit) {
	if s.audits == nil {
		return
	}
	if _, err := s.audits.Create(ctx, entry); err != nil {
		logger.Error("auth service exchange audit failed", err, logger.Fields{
			"outcome": entry.Outcome,
		})
	}
}

func generateState() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func exchangeErrorDetail(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExchange):
		return "The provider rejected the authorization code. It may have expired or already been used."
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "The provider could not be reached. Please try again."
	default:
		return "The provider sent a response we could not understand."
	}
}
