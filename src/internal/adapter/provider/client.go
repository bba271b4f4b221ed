package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/api-sage/bank-viewer/src/internal/domain"
	"github.com/api-sage/bank-viewer/src/internal/logger"
)

const (
	defaultRequestTimeout    = 10 * time.Second
	defaultTransactionsLimit = 30
	maxResponseBodyBytes     = 1 << 20 // 1 MiB

	tokenPath        = "/oauth2/token"
	accountsPath     = "/accounts"
	transactionsPath = "/transactions"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	AuthURL           string
	APIBaseURL        string
	ClientID          string
	ClientSecret      string
	RedirectURI       string
	RequestTimeout    time.Duration
	TransactionsLimit int
	HTTPClient        HTTPDoer
	Now               func() time.Time
}

// Client talks to the banking provider: the OAuth2 token endpoint and the
// accounts and transactions resources.
type Client struct {
	cfg        Config
	httpClient HTTPDoer
}

func NewClient(cfg Config) (*Client, error) {
	cfg.AuthURL = strings.TrimSpace(cfg.AuthURL)
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	cfg.RedirectURI = strings.TrimSpace(cfg.RedirectURI)

	if cfg.AuthURL == "" {
		return nil, fmt.Errorf("provider: auth url is required")
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("provider: api base url is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("provider: client id is required")
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("provider: redirect uri is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.TransactionsLimit <= 0 {
		cfg.TransactionsLimit = defaultTransactionsLimit
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time {
			return time.Now().UTC()
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &Client{cfg: cfg, httpClient: httpClient}, nil
}

func (c *Client) AuthorizationRequest(state string) domain.AuthorizationRequest {
	return domain.AuthorizationRequest{
		Action:       c.cfg.AuthURL,
		ClientID:     c.cfg.ClientID,
		RedirectURI:  c.cfg.RedirectURI,
		ResponseType: "code",
		State:        state,
	}
}

// ExchangeCode trades an authorization code for a credential.
func (c *Client) ExchangeCode(ctx context.Context, code string) (domain.Credential, error) {
	const op = "exchange code"

	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Credential{}, &Error{Op: op, Kind: domain.ErrMissingCode}
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("code", code)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Credential{}, &Error{Op: op, Kind: domain.ErrUnexpectedResponse, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	status, body, err := c.do(req)
	if err != nil {
		logger.Error("provider request failed", err, logger.Fields{
			"op":         op,
			"path":       tokenPath,
			"durationMs": time.Since(start).Milliseconds(),
		})
		return domain.Credential{}, &Error{Op: op, Kind: domain.ErrProviderUnavailable, Err: err}
	}

	logger.Info("provider response", logger.Fields{
		"op":         op,
		"path":       tokenPath,
		"status":     status,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		perr := &Error{Op: op, Status: status, Kind: tokenStatusKind(status)}
		var payload errorResponse
		if json.Unmarshal(body, &payload) == nil {
			perr.Code = payload.code()
			perr.Message = payload.message()
		}
		return domain.Credential{}, perr
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Credential{}, &Error{Op: op, Status: status, Kind: domain.ErrUnexpectedResponse, Err: err}
	}
	if payload.Error != "" {
		return domain.Credential{}, &Error{
			Op:      op,
			Status:  status,
			Code:    payload.Error,
			Message: payload.ErrorDescription,
			Kind:    domain.ErrTokenExchange,
		}
	}

	cred, err := payload.credential(c.cfg.Now())
	if err != nil {
		return domain.Credential{}, &Error{Op: op, Status: status, Kind: domain.ErrUnexpectedResponse, Err: err}
	}
	return cred, nil
}

func (c *Client) ListAccounts(ctx context.Context, cred domain.Credential) ([]domain.Account, error) {
	const op = "list accounts"

	var payload accountsResponse
	if err := c.getJSON(ctx, op, cred, accountsPath, nil, &payload); err != nil {
		return nil, err
	}

	accounts, err := payload.accounts()
	if err != nil {
		return nil, &Error{Op: op, Status: http.StatusOK, Kind: domain.ErrUnexpectedResponse, Err: err}
	}
	return accounts, nil
}

func (c *Client) ListTransactions(ctx context.Context, cred domain.Credential, accountID string) ([]domain.Transaction, error) {
	const op = "list transactions"

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, &Error{Op: op, Kind: domain.ErrUnexpectedResponse, Err: errors.New("account id is required")}
	}

	query := url.Values{}
	query.Set("expand[]", "merchant")
	query.Set("account_id", accountID)
	query.Set("limit", strconv.Itoa(c.cfg.TransactionsLimit))

	var payload transactionsResponse
	if err := c.getJSON(ctx, op, cred, transactionsPath, query, &payload); err != nil {
		return nil, err
	}

	transactions, err := payload.transactions()
	if err != nil {
		return nil, &Error{Op: op, Status: http.StatusOK, Kind: domain.ErrUnexpectedResponse, Err: err}
	}
	return transactions, nil
}

func (c *Client) getJSON(ctx context.Context, op string, cred domain.Credential, path string, query url.Values, out any) error {
	if !cred.Valid() {
		return &Error{Op: op, Kind: domain.ErrNotAuthenticated}
	}

	endpoint := c.cfg.APIBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{Op: op, Kind: domain.ErrUnexpectedResponse, Err: err}
	}
	req.Header.Set("Authorization", cred.Authorization())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	status, body, err := c.do(req)
	if err != nil {
		logger.Error("provider request failed", err, logger.Fields{
			"op":         op,
			"path":       path,
			"durationMs": time.Since(start).Milliseconds(),
		})
		return &Error{Op: op, Kind: domain.ErrProviderUnavailable, Err: err}
	}

	logger.Info("provider response", logger.Fields{
		"op":          op,
		"path":        path,
		"status":      status,
		"durationMs":  time.Since(start).Milliseconds(),
		"fingerprint": logger.Fingerprint(cred.AccessToken),
	})

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		perr := &Error{Op: op, Status: status, Kind: statusKind(status)}
		var payload errorResponse
		if json.Unmarshal(body, &payload) == nil {
			perr.Code = payload.code()
			perr.Message = payload.message()
		}
		return perr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Status: status, Kind: domain.ErrUnexpectedResponse, Err: err}
	}
	return nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes+1))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > maxResponseBodyBytes {
		return 0, nil, fmt.Errorf("response exceeds %d bytes", maxResponseBodyBytes)
	}
	return resp.StatusCode, body, nil
}
