package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskboardpro/automation/internal/domain"
)

type contextKey string

const (
	// ContextKeyUserID is the key for storing the authenticated user ID
	// in request context.
	ContextKeyUserID contextKey = "user_id"
)

// AuthMiddleware validates credentials on the rule-authoring and event
// delivery endpoints. Users present HS256 JWTs minted by the board backend;
// the board backend itself presents a shared service token on the endpoints
// it calls service-to-service.
type AuthMiddleware struct {
	jwtSecret    []byte
	serviceToken string
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(jwtSecret, serviceToken string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:    []byte(jwtSecret),
		serviceToken: serviceToken,
	}
}

// Authenticate validates a user JWT and adds the user ID to request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		userID, err := m.verifyJWT(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateService validates the shared service token used by the board
// backend for event delivery and cascade deletion.
func (m *AuthMiddleware) AuthenticateService(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		if m.serviceToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(m.serviceToken)) != 1 {
			http.Error(w, "invalid service token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// verifyJWT parses and validates an HS256 token, returning its subject.
func (m *AuthMiddleware) verifyJWT(token string) (string, error) {
	if len(m.jwtSecret) == 0 {
		return "", domain.ErrInvalidToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserIDFromContext retrieves the authenticated user ID from request
// context.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}
