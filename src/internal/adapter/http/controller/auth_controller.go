package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-viewer/src/internal/adapter/http/models"
	"github.com/api-sage/bank-viewer/src/internal/adapter/http/views"
	"github.com/api-sage/bank-viewer/src/internal/usecase/service_interfaces"
)

type AuthController struct {
	service service_interfaces.AuthService
}

func NewAuthController(service service_interfaces.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (c *AuthController) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /{$}", c.signIn)
	mux.HandleFunc("GET /oauth/callback", c.callback)
}

func (c *AuthController) signIn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.SignIn(r.Context())
	if err != nil {
		logError(r, err, nil)
		render(w, r, start, http.StatusInternalServerError, views.PageError, response)
		return
	}

	render(w, r, start, http.StatusOK, views.PageSignIn, response)
}

func (c *AuthController) callback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := models.OAuthCallbackRequestFromQuery(r.URL.Query())
	logRequest(r, req)

	response, err := c.service.CompleteSignIn(r.Context(), req)
	if err != nil {
		logError(r, err, nil)
		render(w, r, start, errorStatus(err), views.PageError, response)
		return
	}

	redirect(w, r, start, "/accounts")
}
