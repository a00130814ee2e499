package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/gravitas-games/hexspiral/internal/config"
	"github.com/gravitas-games/hexspiral/pkg/models"
)

// tokenProtocol is the Sec-WebSocket-Protocol entry preceding a token
const tokenProtocol = "access_token"

type contextKey string

const clientCtxKey = contextKey("client")

// JWTValidator handles JWT token validation
type JWTValidator struct {
	secret          []byte
	issuer          string
	redis           *redis.Client
	blacklistPrefix string
}

// Claims represents the JWT claims accepted by the API
type Claims struct {
	Name        string `json:"name"`
	Permissions int64  `json:"permissions"`
	jwt.RegisteredClaims
}

// NewJWTValidator creates a validator for HS256 tokens. When rdb is non-nil
// token subjects are checked against a Redis blacklist.
func NewJWTValidator(cfg config.JWTConfig, blacklistPrefix string, rdb *redis.Client) *JWTValidator {
	return &JWTValidator{
		secret:          []byte(cfg.Secret),
		issuer:          cfg.Issuer,
		redis:           rdb,
		blacklistPrefix: blacklistPrefix,
	}
}

// ValidateToken validates a JWT token and returns client information
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (*models.Client, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", v.issuer, claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	if v.redis != nil {
		blacklisted, err := v.redis.Exists(ctx, v.blacklistPrefix+claims.Subject).Result()
		if err != nil {
			// don't fail authentication if Redis is down
			log.Warn().Err(err).Msg("failed to check token blacklist")
		} else if blacklisted > 0 {
			return nil, fmt.Errorf("token is blacklisted")
		}
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return &models.Client{
		ID:          claims.Subject,
		Name:        name,
		Permissions: claims.Permissions,
	}, nil
}

// requireAuth attaches the calling client to the request context, rejecting
// requests without a valid token when authentication is enabled.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := models.Anonymous()
		if s.jwtValidator != nil {
			tokenString := extractToken(r)
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authentication token")
				return
			}
			var err error
			client, err = s.jwtValidator.ValidateToken(r.Context(), tokenString)
			if err != nil {
				log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("rejected token")
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
		}
		ctx := context.WithValue(r.Context(), clientCtxKey, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientFrom returns the client attached by requireAuth
func clientFrom(ctx context.Context) *models.Client {
	if c, ok := ctx.Value(clientCtxKey).(*models.Client); ok {
		return c
	}
	return models.Anonymous()
}

// extractToken reads a token from the Sec-WebSocket-Protocol header,
// the Authorization header or the token query parameter, in that order.
func extractToken(r *http.Request) string {
	// Format: "access_token, <token>"
	if protocols := r.Header.Get("Sec-WebSocket-Protocol"); protocols != "" {
		parts := strings.Split(protocols, ",")
		if len(parts) == 2 && strings.TrimSpace(parts[0]) == tokenProtocol {
			return strings.TrimSpace(parts[1])
		}
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return r.URL.Query().Get("token")
}
