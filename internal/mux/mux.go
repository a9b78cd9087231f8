package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"
	"hpblackjack-server/internal/jwt"
	"hpblackjack-server/pkg/engine"
)

type ctxKey int

const (
	ctxIdentityKey ctxKey = iota
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	engine  *engine.Engine

	// store for testing purposes
	authRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(version string, e *engine.Engine) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		engine:  e,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodGet).Path("/profile").Handler(this.getProfile())
		r.Methods(http.MethodPost).Path("/profile").Handler(this.postProfile())
		r.Methods(http.MethodPut).Path("/profile").Handler(this.putProfile())
		r.Methods(http.MethodGet).Path("/ledger").Handler(this.getLedger())

		r.Methods(http.MethodGet).Path("/game").Handler(this.getGame())
		r.Methods(http.MethodPost).Path("/game").Handler(this.postGame())
		r.Methods(http.MethodPost).Path("/game/action").Handler(this.postGameAction())
		r.Methods(http.MethodGet).Path("/game/ws").Handler(this.getGameWS())
	}

	return this
}

// authMiddleware puts the identity from the bearer token in the request context
// The token may also be passed as access_token, which browsers need for websockets.
func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		identity, err := jwt.ValidIdentity(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxIdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func identityFromContext(ctx context.Context) string {
	return ctx.Value(ctxIdentityKey).(string)
}
