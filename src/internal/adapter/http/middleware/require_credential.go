package middleware

import (
	"net/http"

	"github.com/api-sage/bank-viewer/src/internal/domain"
	"github.com/api-sage/bank-viewer/src/internal/logger"
)

// RequireCredential redirects to the sign-in page while no credential is held.
func RequireCredential(tokens domain.TokenStore, signInPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := tokens.Get(r.Context()); !ok {
				logger.Info("credential middleware redirecting to sign in", logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Redirect(w, r, signInPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
