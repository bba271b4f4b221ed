package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-viewer/src/internal/adapter/http/models"
	"github.com/api-sage/bank-viewer/src/internal/commons"
	"github.com/api-sage/bank-viewer/src/internal/domain"
)

type AuthService interface {
	SignIn(ctx context.Context) (commons.Response[models.SignInPage], error)
	CompleteSignIn(ctx context.Context, req models.OAuthCallbackRequest) (commons.Response[models.OAuthCallbackResponse], error)
}

type BankingService interface {
	Accounts(ctx context.Context) (commons.Response[models.AccountsPage], error)
	Transactions(ctx context.Context, accountID string) (commons.Response[models.TransactionsPage], error)
}

type ProviderClient interface {
	AuthorizationRequest(state string) domain.AuthorizationRequest
	ExchangeCode(ctx context.Context, code string) (domain.Credential, error)
	ListAccounts(ctx context.Context, cred domain.Credential) ([]domain.Account, error)
	ListTransactions(ctx context.Context, cred domain.Credential, accountID string) ([]domain.Transaction, error)
}
