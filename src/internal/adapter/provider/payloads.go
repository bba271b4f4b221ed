package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	UserID           string `json:"user_id"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// errorResponse covers both the OAuth error shape and the provider's
// {code, message} shape.
type errorResponse struct {
	Code             string `json:"code"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) code() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Error
}

func (e errorResponse) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorDescription
}

type accountsResponse struct {
	Accounts *[]accountPayload `json:"accounts"`
}

type accountPayload struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Closed      bool   `json:"closed"`
	Created     string `json:"created"`
}

type transactionsResponse struct {
	Transactions *[]transactionPayload `json:"transactions"`
}

type transactionPayload struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      *int64          `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Created     string          `json:"created"`
	Merchant    merchantPayload `json:"merchant"`
}

// merchantPayload is an object when expand[]=merchant took effect, a bare
// merchant id when it did not, and null for transactions without one.
type merchantPayload struct {
	ID   string
	Name string
}

func (m *merchantPayload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &m.ID)
	}

	var obj struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode merchant: %w", err)
	}
	m.ID = obj.ID
	m.Name = obj.Name
	return nil
}

func (r tokenResponse) credential(now time.Time) (domain.Credential, error) {
	accessToken := strings.TrimSpace(r.AccessToken)
	if accessToken == "" {
		return domain.Credential{}, fmt.Errorf("token response missing access_token")
	}
	tokenType := strings.TrimSpace(r.TokenType)
	if tokenType == "" {
		return domain.Credential{}, fmt.Errorf("token response missing token_type")
	}

	cred := domain.Credential{
		TokenType:   tokenType,
		AccessToken: accessToken,
		UserID:      strings.TrimSpace(r.UserID),
	}
	if r.ExpiresIn > 0 {
		cred.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return cred, nil
}

func (r accountsResponse) accounts() ([]domain.Account, error) {
	if r.Accounts == nil {
		return nil, fmt.Errorf("accounts response missing accounts list")
	}

	out := make([]domain.Account, 0, len(*r.Accounts))
	for i, item := range *r.Accounts {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, fmt.Errorf("account at index %d missing id", i)
		}
		out = append(out, domain.Account{
			ID:          id,
			Type:        item.Type,
			Description: item.Description,
			Closed:      item.Closed,
			Created:     parseTimestamp(item.Created),
		})
	}
	return out, nil
}

func (r transactionsResponse) transactions() ([]domain.Transaction, error) {
	if r.Transactions == nil {
		return nil, fmt.Errorf("transactions response missing transactions list")
	}

	out := make([]domain.Transaction, 0, len(*r.Transactions))
	for i, item := range *r.Transactions {
		if item.Amount == nil {
			return nil, fmt.Errorf("transaction at index %d missing amount", i)
		}
		out = append(out, domain.Transaction{
			ID:          item.ID,
			Description: item.Description,
			Amount:      *item.Amount,
			Currency:    item.Currency,
			Category:    item.Category,
			Merchant:    item.Merchant.Name,
			Created:     parseTimestamp(item.Created),
		})
	}
	return out, nil
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
