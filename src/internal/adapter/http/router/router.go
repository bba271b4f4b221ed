package router

import "net/http"

type AuthRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

type BankingRouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler)
}

// New builds the mux. credentialMiddleware guards the banking pages only;
// the sign-in and callback routes must stay reachable without a credential.
func New(
	authController AuthRouteRegistrar,
	bankingController BankingRouteRegistrar,
	credentialMiddleware func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if authController != nil {
		authController.RegisterRoutes(mux, nil)
	}
	if bankingController != nil {
		bankingController.RegisterRoutes(mux, credentialMiddleware)
	}

	return mux
}
