package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iwvelando/payment-planner/internal/config"
)

type ownerKey struct{}

// OwnerFromContext returns the plan owner set by the auth middleware.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey{}).(string)
	return owner, ok && owner != ""
}

// WithOwner returns a context scoped to owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// AuthMiddleware verifies the HMAC-signed bearer token and scopes the request
// to its subject claim. When auth is disabled every request is scoped to the
// configured development owner.
func (h *handler) AuthMiddleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	secret := []byte(cfg.JWTSecret)
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Disabled {
				next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), cfg.DevOwner)))
				return
			}

			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				h.respondErrorWithOp(w, http.StatusUnauthorized, "authorization bearer token is required", "server.AuthMiddleware")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secret, nil
			}, parserOpts...)
			if err != nil || !token.Valid {
				h.respondErrorWithOp(w, http.StatusUnauthorized, "invalid token", "server.AuthMiddleware")
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				h.respondErrorWithOp(w, http.StatusUnauthorized, "token has no subject", "server.AuthMiddleware")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), subject)))
		})
	}
}
