package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/bank-viewer/src/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		AuthURL:      "https://auth.example.test",
		APIBaseURL:   srv.URL,
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURI:  "http://localhost:3000/oauth/callback",
		Now:          func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

var validCred = domain.Credential{TokenType: "Bearer", AccessToken: "tok-1"}

func TestNewClientRequiresClientID(t *testing.T) {
	_, err := NewClient(Config{AuthURL: "a", APIBaseURL: "b", RedirectURI: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client id")
}

func TestAuthorizationRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	form := client.AuthorizationRequest("state-1")
	assert.Equal(t, domain.AuthorizationRequest{
		Action:       "https://auth.example.test",
		ClientID:     "client-1",
		RedirectURI:  "http://localhost:3000/oauth/callback",
		ResponseType: "code",
		State:        "state-1",
	}, form)
}

func TestExchangeCodeSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth2/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret-1", r.PostForm.Get("client_secret"))
		assert.Equal(t, "http://localhost:3000/oauth/callback", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))

		writeJSON(w, http.StatusOK, `{"access_token":"tok-1","token_type":"Bearer","expires_in":21600,"user_id":"user_1","client_id":"client-1"}`)
	})

	cred, err := client.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", cred.TokenType)
	assert.Equal(t, "tok-1", cred.AccessToken)
	assert.Equal(t, "user_1", cred.UserID)
	assert.Equal(t, fixedNow.Add(6*time.Hour), cred.ExpiresAt)
}

func TestExchangeCodeMissingCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called without a code")
	})

	_, err := client.ExchangeCode(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrMissingCode)
}

func TestExchangeCodeRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"code has expired"}`)
	})

	_, err := client.ExchangeCode(context.Background(), "expired")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenExchange)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusBadRequest, perr.Status)
	assert.Equal(t, "invalid_grant", perr.Code)
	assert.Equal(t, "code has expired", perr.Message)
}

func TestExchangeCodeLogsProviderResponse(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	})

	_, err := client.ExchangeCode(context.Background(), "expired")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "INFO provider response")
	assert.Contains(t, out, `"op":"exchange code"`)
	assert.Contains(t, out, `"path":"/oauth2/token"`)
	assert.Contains(t, out, `"status":400`)
	assert.Contains(t, out, `"durationMs":`)
	assert.NotContains(t, out, "secret-1")
}

func TestExchangeCodeErrorFieldWithOK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"error":"invalid_client"}`)
	})

	_, err := client.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, domain.ErrTokenExchange)
}

func TestExchangeCodeServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestExchangeCodeMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>not json</html>`)
	})

	_, err := client.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, domain.ErrUnexpectedResponse)
}

func TestExchangeCodeMissingAccessToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"token_type":"Bearer"}`)
	})

	_, err := client.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, domain.ErrUnexpectedResponse)
}

func TestExchangeCodeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client, err := NewClient(Config{
		AuthURL:     "https://auth.example.test",
		APIBaseURL:  baseURL,
		ClientID:    "client-1",
		RedirectURI: "http://localhost:3000/oauth/callback",
	})
	require.NoError(t, err)

	_, err = client.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestExchangeCodeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client, err := NewClient(Config{
		AuthURL:        "https://auth.example.test",
		APIBaseURL:     srv.URL,
		ClientID:       "client-1",
		RedirectURI:    "http://localhost:3000/oauth/callback",
		RequestTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestListAccountsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"accounts":[
			{"id":"acc_1","description":"Current account","type":"uk_retail","created":"2025-01-02T10:00:00.123Z"},
			{"id":"acc_2","description":"Joint","type":"uk_retail_joint","closed":true}
		]}`)
	})

	accounts, err := client.ListAccounts(context.Background(), validCred)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "acc_1", accounts[0].ID)
	assert.Equal(t, "Current account", accounts[0].Description)
	assert.Equal(t, "uk_retail", accounts[0].Type)
	assert.Equal(t, 2025, accounts[0].Created.Year())
	assert.True(t, accounts[1].Closed)
	assert.True(t, accounts[1].Created.IsZero())
}

func TestListAccountsForbidden(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"code":"forbidden.insufficient_permissions","message":"Access forbidden due to insufficient permissions"}`)
	})

	_, err := client.ListAccounts(context.Background(), validCred)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccessForbidden)
	assert.Contains(t, err.Error(), "forbidden.insufficient_permissions")
}

func TestListAccountsUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListAccounts(context.Background(), validCred)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestListAccountsShapeMismatch(t *testing.T) {
	tests := map[string]string{
		"missing list": `{"items":[]}`,
		"missing id":   `{"accounts":[{"description":"x"}]}`,
		"not json":     `oops`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})

			_, err := client.ListAccounts(context.Background(), validCred)
			assert.ErrorIs(t, err, domain.ErrUnexpectedResponse)
		})
	}
}

func TestListAccountsWithoutCredential(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called without a credential")
	})

	_, err := client.ListAccounts(context.Background(), domain.Credential{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestListTransactionsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "merchant", r.URL.Query().Get("expand[]"))
		assert.Equal(t, "acc_1", r.URL.Query().Get("account_id"))
		assert.Equal(t, "30", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"transactions":[
			{"id":"tx_1","description":"PRET A MANGER","amount":-1234,"currency":"GBP","category":"eating_out","merchant":{"id":"merch_1","name":"Pret A Manger"}},
			{"id":"tx_2","description":"Top up","amount":5000,"currency":"GBP","category":"general","merchant":null},
			{"id":"tx_3","description":"Shop","amount":99,"currency":"GBP","category":"shopping","merchant":"merch_9"}
		]}`)
	})

	txns, err := client.ListTransactions(context.Background(), validCred, "acc_1")
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, int64(-1234), txns[0].Amount)
	assert.Equal(t, "Pret A Manger", txns[0].Merchant)
	assert.Equal(t, "eating_out", txns[0].Category)
	assert.Empty(t, txns[1].Merchant)
	assert.Empty(t, txns[2].Merchant)
}

func TestListTransactionsMissingAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"transactions":[{"id":"tx_1","description":"x"}]}`)
	})

	_, err := client.ListTransactions(context.Background(), validCred, "acc_1")
	assert.ErrorIs(t, err, domain.ErrUnexpectedResponse)
}

func TestListTransactionsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"code":"not_found","message":"account not found"}`)
	})

	_, err := client.ListTransactions(context.Background(), validCred, "acc_missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnexpectedResponse)
	assert.True(t, strings.Contains(err.Error(), "account not found"))
}

func TestListTransactionsOversizedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Repeat("a", maxResponseBodyBytes+10)))
	})

	_, err := client.ListTransactions(context.Background(), validCred, "acc_1")
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
