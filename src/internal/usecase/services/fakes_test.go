package services_test

import (
	"context"
	"errors"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

type fakeProvider struct {
	exchangeCred domain.Credential
	exchangeErr  error
	accounts     []domain.Account
	accountsErr  error
	transactions []domain.Transaction
	txnErr       error

	exchangedCodes []string
	seenCred       domain.Credential
	seenAccountID  string
}

func (f *fakeProvider) AuthorizationRequest(state string) domain.AuthorizationRequest {
	return domain.AuthorizationRequest{
		Action:       "https://auth.example.test",
		ClientID:     "client-1",
		RedirectURI:  "http://localhost:3000/oauth/callback",
		ResponseType: "code",
		State:        state,
	}
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (domain.Credential, error) {
	f.exchangedCodes = append(f.exchangedCodes, code)
	return f.exchangeCred, f.exchangeErr
}

func (f *fakeProvider) ListAccounts(_ context.Context, cred domain.Credential) ([]domain.Account, error) {
	f.seenCred = cred
	return f.accounts, f.accountsErr
}

func (f *fakeProvider) ListTransactions(_ context.Context, cred domain.Credential, accountID string) ([]domain.Transaction, error) {
	f.seenCred = cred
	f.seenAccountID = accountID
	return f.transactions, f.txnErr
}

type failingAudits struct{}

func (failingAudits) Create(context.Context, domain.ExchangeAudit) (domain.ExchangeAudit, error) {
	return domain.ExchangeAudit{}, errors.New("database down")
}

func (failingAudits) ListRecent(context.Context, int) ([]domain.ExchangeAudit, error) {
	return nil, errors.New("database down")
}
