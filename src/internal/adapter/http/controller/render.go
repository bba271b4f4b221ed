package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/bank-viewer/src/internal/adapter/http/views"
	"github.com/api-sage/bank-viewer/src/internal/domain"
)

const signInPath = "/"

func render(w http.ResponseWriter, r *http.Request, start time.Time, status int, page views.Page, data any) {
	if err := views.Render(w, status, page, data); err != nil {
		logError(r, err, nil)
		http.Error(w, "unable to render page", http.StatusInternalServerError)
		logResponse(r, http.StatusInternalServerError, start)
		return
	}
	logResponse(r, status, start)
}

func redirect(w http.ResponseWriter, r *http.Request, start time.Time, location string) {
	http.Redirect(w, r, location, http.StatusFound)
	logResponse(r, http.StatusFound, start)
}

// errorStatus maps a service error to the status of the error page.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingCode),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAuthorizationDenied):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTokenExchange),
		errors.Is(err, domain.ErrUnexpectedResponse),
		errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
