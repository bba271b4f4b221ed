package services

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/api-sage/bank-viewer/src/internal/adapter/http/models"
	"github.com/api-sage/bank-viewer/src/internal/commons"
	"github.com/api-sage/bank-viewer/src/internal/domain"
	"github.com/api-sage/bank-viewer/src/internal/logger"
	"github.com/api-sage/bank-viewer/src/internal/usecase/service_interfaces"
)

// ApproveAccessMessage is shown while the user has not yet approved data
// access in the provider's companion app.
const ApproveAccessMessage = "Please open your Monzo app and approve access to your data."

type BankingService struct {
	provider service_interfaces.ProviderClient
	tokens   domain.TokenStore
}

func NewBankingService(provider service_interfaces.ProviderClient, tokens domain.TokenStore) *BankingService {
	return &BankingService{
		provider: provider,
		tokens:   tokens,
	}
}

func (s *BankingService) Accounts(ctx context.Context) (commons.Response[models.AccountsPage], error) {
	cred, ok := s.tokens.Get(ctx)
	if !ok {
		return commons.ErrorResponse[models.AccountsPage]("not signed in"), domain.ErrNotAuthenticated
	}

	accounts, err := s.provider.ListAccounts(ctx, cred)
	if err != nil {
		if errors.Is(err, domain.ErrAccessForbidden) {
			logger.Info("banking service accounts pending approval", logger.Fields{
				"fingerprint": logger.Fingerprint(cred.AccessToken),
			})
			return commons.MessageResponse[models.AccountsPage]("Accounts", ApproveAccessMessage), err
		}
		logger.Error("banking service list accounts failed", err, logger.Fields{"kind": errorKind(err)})
		return commons.ErrorResponse[models.AccountsPage]("unable to load accounts", resourceErrorDetail(err)), err
	}

	page := models.AccountsPage{Accounts: make([]models.AccountView, 0, len(accounts))}
	for _, account := range accounts {
		page.Accounts = append(page.Accounts, models.AccountView{
			ID:              account.ID,
			Type:            account.Type,
			Description:     account.Description,
			Closed:          account.Closed,
			TransactionsURL: "/transactions/" + url.PathEscape(account.ID),
		})
	}

	logger.Info("banking service list accounts success", logger.Fields{"count": len(page.Accounts)})
	return commons.SuccessResponse("Accounts", page), nil
}

func (s *BankingService) Transactions(ctx context.Context, accountID string) (commons.Response[models.TransactionsPage], error) {
	accountID = strings.TrimSpace(accountID)

	cred, ok := s.tokens.Get(ctx)
	if !ok {
		return commons.ErrorResponse[models.TransactionsPage]("not signed in"), domain.ErrNotAuthenticated
	}

	transactions, err := s.provider.ListTransactions(ctx, cred, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccessForbidden) {
			return commons.MessageResponse[models.TransactionsPage]("Transactions", ApproveAccessMessage), err
		}
		logger.Error("banking service list transactions failed", err, logger.Fields{
			"accountId": accountID,
			"kind":      errorKind(err),
		})
		return commons.ErrorResponse[models.TransactionsPage]("unable to load transactions", resourceErrorDetail(err)), err
	}

	page := models.TransactionsPage{
		AccountID:    accountID,
		Transactions: make([]models.TransactionView, 0, len(transactions)),
	}
	for _, txn := range transactions {
		page.Transactions = append(page.Transactions, models.TransactionView{
			Description: txn.Description,
			Merchant:    txn.Merchant,
			Amount:      txn.DisplayAmount(),
			Currency:    txn.Currency,
			Category:    txn.Category,
		})
	}

	logger.Info("banking service list transactions success", logger.Fields{
		"accountId": accountID,
		"count":     len(page.Transactions),
	})
	return commons.SuccessResponse("Transactions", page), nil
}

func resourceErrorDetail(err error) string {
	switch {
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "The provider could not be reached. Please try again."
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "Your session is no longer valid. Please sign in again."
	default:
		return "The provider sent a response we could not understand."
	}
}
