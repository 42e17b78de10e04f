package http

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/WOOWTECH/ha-finance/internal/http/apierr"
)

// RequireBearer rejects requests that lack a valid HS256 token signed with
// secret.
func RequireBearer(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			if _, err := parser.Parse(raw, keyFunc); err != nil {
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="ha-finance"`)
	apierr.Unauthorized(w, message)
}
