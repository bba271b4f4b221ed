package models

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

type OAuthCallbackRequest struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

func OAuthCallbackRequestFromQuery(query url.Values) OAuthCallbackRequest {
	return OAuthCallbackRequest{
		Code:             strings.TrimSpace(query.Get("code")),
		State:            strings.TrimSpace(query.Get("state")),
		Error:            strings.TrimSpace(query.Get("error")),
		ErrorDescription: strings.TrimSpace(query.Get("error_description")),
	}
}

func (r OAuthCallbackRequest) Validate() error {
	if r.Error != "" {
		return nil
	}
	if r.Code == "" {
		return errors.New("code is required")
	}
	return nil
}

type OAuthCallbackResponse struct {
	TokenType string
	UserID    string
	ExpiresAt time.Time
}
