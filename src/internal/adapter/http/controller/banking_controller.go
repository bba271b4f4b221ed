package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/bank-viewer/src/internal/adapter/http/views"
	"github.com/api-sage/bank-viewer/src/internal/domain"
	"github.com/api-sage/bank-viewer/src/internal/logger"
	"github.com/api-sage/bank-viewer/src/internal/usecase/service_interfaces"
)

type BankingController struct {
	service service_interfaces.BankingService
}

func NewBankingController(service service_interfaces.BankingService) *BankingController {
	return &BankingController{service: service}
}

// RegisterRoutes wires the credential-protected pages; authMiddleware
// redirects to sign-in when no credential is held.
func (c *BankingController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	accounts := http.Handler(http.HandlerFunc(c.accounts))
	transactions := http.Handler(http.HandlerFunc(c.transactions))
	if authMiddleware != nil {
		accounts = authMiddleware(accounts)
		transactions = authMiddleware(transactions)
	}
	mux.Handle("GET /accounts", accounts)
	mux.Handle("GET /transactions/{acc_id}", transactions)
}

func (c *BankingController) accounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.Accounts(r.Context())
	if err != nil {
		c.renderError(w, r, start, err, response)
		return
	}

	render(w, r, start, http.StatusOK, views.PageAccounts, response)
}

func (c *BankingController) transactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	accountID := r.PathValue("acc_id")
	logRequest(r, map[string]string{"accountId": accountID})

	response, err := c.service.Transactions(r.Context(), accountID)
	if err != nil {
		c.renderError(w, r, start, err, response)
		return
	}

	render(w, r, start, http.StatusOK, views.PageTransactions, response)
}

// renderError covers the three outcomes a protected page can fail with:
// no usable credential, data access not yet approved, and everything else.
func (c *BankingController) renderError(w http.ResponseWriter, r *http.Request, start time.Time, err error, response any) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		logger.Info("protected page requires sign in", logger.Fields{"path": r.URL.Path})
		redirect(w, r, start, signInPath)
	case errors.Is(err, domain.ErrAccessForbidden):
		render(w, r, start, http.StatusOK, views.PageMessage, response)
	default:
		logError(r, err, nil)
		render(w, r, start, errorStatus(err), views.PageError, response)
	}
}
