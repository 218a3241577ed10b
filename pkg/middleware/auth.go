package middleware

import (
	"net/http"
	"strings"

	"service-dispatch/internal/data/repository"
	"service-dispatch/pkg/utils"

	"go.uber.org/zap"
)

// Auth validates the bearer API token and puts the resolved party (id +
// kind) on the request context. Token issuance itself lives outside this
// service.
func Auth(partyRepo repository.PartyRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			token := parts[1]

			party, err := partyRepo.FindByToken(r.Context(), token)
			if err != nil {
				logger.Error("Failed to resolve party token", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if party == nil {
				logger.Warn("Unknown or revoked API token")
				utils.ResponseUnauthorized(w, "Invalid or revoked token")
				return
			}

			ctx := utils.SetPartyContext(r.Context(), party.ID, string(party.Kind))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireKind rejects callers whose resolved party kind does not match.
func RequireKind(kind string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			partyKind, ok := utils.GetPartyKindFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if partyKind != kind {
				logger.Warn("Party kind not allowed",
					zap.String("kind", partyKind),
					zap.String("required", kind),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, kind+" access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
