package middleware

import (
	"crypto/rsa"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/pkg/logger"
)

// TokenVerifier authenticates requests with RS256 bearer tokens issued by
// the external identity provider. Only the public key lives here; this
// service never signs tokens.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	logger    *slog.Logger
}

func NewTokenVerifier(publicKey *rsa.PublicKey, logger *slog.Logger) *TokenVerifier {
	return &TokenVerifier{publicKey: publicKey, logger: logger}
}

// Middleware verifies the bearer token and puts the subject user id into the
// request context. Audit stamping downstream depends on that id being set.
func (v *TokenVerifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			unauthorized(w)
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, internal.ErrInvalidToken
			}
			return v.publicKey, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			v.logger.Warn("token verification failed", "error", err)
			unauthorized(w)
			return
		}

		ctx := internal.ContextWithUserID(r.Context(), claims.Subject)
		ctx = logger.With(ctx, "user_id", claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorized"}`))
}
