package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hospicloud/internal/domain/entity"
	"hospicloud/internal/infrastructure/identity"
	"hospicloud/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	CurrentUserKey contextKey = "current_user"
	RequestIDKey   contextKey = "request_id"
)

type AuthMiddleware struct {
	provider identity.Provider
	log      *logrus.Logger
}

// NewAuthMiddleware verifies bearer tokens against the identity provider.
func NewAuthMiddleware(provider identity.Provider, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		provider: provider,
		log:      log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		current, err := m.verify(r.Context(), parts[1])
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}
			m.log.Warnf("Failed to verify token: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}

		ctx := context.WithValue(r.Context(), CurrentUserKey, current)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) verify(ctx context.Context, token string) (*entity.CurrentUser, error) {
	verified, err := m.provider.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return &entity.CurrentUser{
		ID:         verified.Claims.UserID,
		UID:        verified.UID,
		Role:       verified.Claims.Role,
		HospitalID: verified.Claims.HospitalID,
	}, nil
}

// GetCurrentUser extracts the authenticated caller from context
func GetCurrentUser(ctx context.Context) (*entity.CurrentUser, bool) {
	current, ok := ctx.Value(CurrentUserKey).(*entity.CurrentUser)
	return current, ok
}

// GetRequestID extracts the request id set by the logging middleware
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
