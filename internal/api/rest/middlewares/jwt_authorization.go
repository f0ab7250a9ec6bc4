package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/enforcer"
	"github.com/CameronXie/canteen-admin/internal/keyfetcher"
)

type contextKey string

const (
	BearerPrefix                         = "bearer"
	AccessTokenQueryParam                = "access_token"
	DefaultClockSkewTolerance            = time.Minute
	UserIDContextKey          contextKey = "user_id"

	authHeaderMissingMessage       = "authorization header missing"
	invalidAuthHeaderFormatMessage = "invalid authorization header format"
	internalServerErrorMessage     = "internal server error"
	invalidTokenMessage            = "invalid token"
	forbiddenMessage               = "access denied"
)

var errInvalidAuthHeader = errors.New("invalid authorization header format")

// TokenConfig holds the claims every accepted token must carry
type TokenConfig struct {
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// JWTAuthorizationMiddleware validates RS256 tokens and asks the enforcer whether the
// token subject may call the requested method and path.
type JWTAuthorizationMiddleware struct {
	enforcer         enforcer.Enforcer
	publicKeyFetcher keyfetcher.PublicKeyFetcher
	parserOptions    []jwt.ParserOption
	logger           *slog.Logger
}

// Handle processes incoming HTTP requests, applying JWT authorization by validating tokens and enforcing access policies.
func (m *JWTAuthorizationMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			if errors.Is(err, errInvalidAuthHeader) {
				m.logger.ErrorContext(r.Context(), "failed to extract token", "error", err)
				response.JSONErrorResponse(w, http.StatusUnauthorized, invalidAuthHeaderFormatMessage)
				return
			}
			response.JSONErrorResponse(w, http.StatusUnauthorized, authHeaderMissingMessage)
			return
		}

		publicKey, err := m.publicKeyFetcher.FetchPublicKey()
		if err != nil {
			m.logger.ErrorContext(r.Context(), "failed to fetch public key", "error", err)
			response.JSONErrorResponse(w, http.StatusInternalServerError, internalServerErrorMessage)
			return
		}

		claims := new(jwt.RegisteredClaims)
		_, err = jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
			return publicKey, nil
		}, m.parserOptions...)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "failed to parse token", "error", err)
			response.JSONErrorResponse(w, http.StatusUnauthorized, invalidTokenMessage)
			return
		}

		if claims.Subject == "" {
			m.logger.ErrorContext(r.Context(), "failed to get subject from token claims")
			response.JSONErrorResponse(w, http.StatusUnauthorized, invalidTokenMessage)
			return
		}

		ok, err := m.enforcer.Enforce(
			r.Context(),
			&enforcer.AccessRequest{
				Subject:  claims.Subject,
				Resource: r.URL.Path,
				Action:   r.Method,
			},
		)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "failed to enforce access policy", "error", err, "subject", claims.Subject)
			response.JSONErrorResponse(w, http.StatusForbidden, forbiddenMessage)
			return
		}

		if !ok {
			m.logger.WarnContext(r.Context(), "access denied", "subject", claims.Subject, "method", r.Method, "path", r.URL.Path)
			response.JSONErrorResponse(w, http.StatusForbidden, forbiddenMessage)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDContextKey, claims.Subject)))
	})
}

// extractToken reads a Bearer token from the Authorization header, falling back to the
// access_token query parameter used by browser WebSocket clients.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if token := r.URL.Query().Get(AccessTokenQueryParam); token != "" {
			return token, nil
		}
		return "", errors.New("authorization header missing")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerPrefix) || parts[1] == "" {
		return "", errInvalidAuthHeader
	}

	return parts[1], nil
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok
}

// NewJWTAuthorizationMiddleware returns a new instance of JWTAuthorizationMiddleware with the given enforcer and public key fetcher.
func NewJWTAuthorizationMiddleware(
	e enforcer.Enforcer,
	publicKeyFetcher keyfetcher.PublicKeyFetcher,
	cfg TokenConfig,
	logger *slog.Logger,
) Middleware {
	clockSkew := cfg.ClockSkew
	if clockSkew == 0 {
		clockSkew = DefaultClockSkewTolerance
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg(), jwt.SigningMethodRS384.Alg(), jwt.SigningMethodRS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		options = append(options, jwt.WithAudience(cfg.Audience))
	}

	return &JWTAuthorizationMiddleware{
		enforcer:         e,
		publicKeyFetcher: publicKeyFetcher,
		parserOptions:    options,
		logger:           logger,
	}
}
