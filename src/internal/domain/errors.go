package domain

import "errors"

var ErrNotAuthenticated = errors.New("Not authenticated")
var ErrAccessForbidden = errors.New("Access to account data not approved")
var ErrTokenExchange = errors.New("Token exchange rejected")
var ErrUnexpectedResponse = errors.New("Unexpected provider response")
var ErrProviderUnavailable = errors.New("Provider unavailable")
var ErrMissingCode = errors.New("Authorization code is required")
var ErrInvalidState = errors.New("Invalid or expired oauth state")
var ErrAuthorizationDenied = errors.New("Authorization denied at provider")
