package v1handler

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"biomarker/internal/config"
	"biomarker/pkg/logger"
	"biomarker/pkg/serrors"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SecHandlerOptions configures bearer-token verification.
type SecHandlerOptions struct {
	// PublicKey is the PEM-encoded RSA public key tokens must verify against.
	PublicKey string
}

// NewSecHandlerOptions extracts security settings from the application config.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{
		PublicKey: cfg.JWT.PublicKey,
	}
}

// SecHandler verifies RS256 bearer tokens on protected routes.
type SecHandler struct {
	key *rsa.PublicKey
}

// NewSecHandler parses the configured public key and returns a SecHandler.
func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{key: key}, nil
}

// Middleware rejects requests without a valid bearer token. The token subject
// is attached to the request-scoped logger for traceability.
func (s *SecHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, r, serrors.With(serrors.ErrUnauthorized, "missing bearer token"))

			return
		}

		claims := jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
			return s.key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
		if err != nil {
			writeError(w, r, serrors.With(serrors.ErrUnauthorized, "invalid bearer token"))

			return
		}

		ctx := logger.WithFields(r.Context(), zap.String("subject", claims.Subject))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
