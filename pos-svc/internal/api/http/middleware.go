package httpapi

import (
	"net/http"
	"strings"

	"overcooked-pos/pos-svc/internal/domain"
)

type TokenVerifier interface {
	Verify(token string) (domain.Actor, error)
}

// AuthMiddleware turns the bearer token into the actor every engine call
// reads its tenant and privilege from.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, "missing bearer token")
				return
			}
			actor, err := verifier.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeAuthError(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actor)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "UNAUTHORIZED", Message: message})
}
