package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/authn"
	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/keyfetcher"
)

const (
	DefaultTokenTTL               = 12 * time.Hour
	invalidEmailOrPasswordMessage = "invalid email or password"
)

// TokenConfig describes the tokens issued on sign-in
type TokenConfig struct {
	Issuer   string
	Audience string
	TTL      time.Duration
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
	IsAdmin   bool         `json:"is_admin"`
}

// SignInHandler processes user sign-in requests, authenticates credentials, and generates JWT tokens.
type SignInHandler struct {
	authenticator     authn.Authenticator
	privateKeyFetcher keyfetcher.PrivateKeyFetcher
	tokenConfig       TokenConfig
	logger            *slog.Logger
}

// ServeHTTP handles HTTP requests for user sign-in, authenticates users and generates JWT tokens on successful login.
// Non-admin accounts receive a token too; the authorization middleware rejects them on admin routes.
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := new(SignInRequest)
	if err := decodeBody(r, req); err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestBodyMessage)
		return
	}

	logger := h.logger.With("email", req.Email)
	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authn.ErrInvalidCredentials) {
			logger.WarnContext(r.Context(), "failed to authenticate user", "error", err)
			response.JSONErrorResponse(w, http.StatusUnauthorized, invalidEmailOrPasswordMessage)
			return
		}

		logger.ErrorContext(r.Context(), "failed to authenticate user", "error", err)
		response.JSONErrorResponse(w, http.StatusInternalServerError, internalServerErrorMessage)
		return
	}

	expiresAt := time.Now().Add(h.tokenConfig.TTL).Truncate(time.Second)
	token, err := h.generateJWT(user.ID.String(), expiresAt)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to generate JWT", "error", err)
		response.JSONErrorResponse(w, http.StatusInternalServerError, internalServerErrorMessage)
		return
	}

	logger.InfoContext(r.Context(), "user signed in", "user_id", user.ID, "is_admin", user.IsAdmin)
	response.JSONResponse(w, http.StatusOK, SignInResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		IsAdmin:   user.IsAdmin,
	})
}

// generateJWT signs an RS256 token for subject that expires at expiresAt.
func (h *SignInHandler) generateJWT(subject string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    h.tokenConfig.Issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	if h.tokenConfig.Audience != "" {
		claims.Audience = jwt.ClaimStrings{h.tokenConfig.Audience}
	}

	privateKey, err := h.privateKeyFetcher.FetchPrivateKey()
	if err != nil {
		return "", err
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
}

// NewSignInHandler creates a new HTTP handler for user sign-in, using the provided authenticator and private key fetcher.
func NewSignInHandler(
	authenticator authn.Authenticator,
	privateKeyFetcher keyfetcher.PrivateKeyFetcher,
	tokenConfig TokenConfig,
	logger *slog.Logger,
) http.Handler {
	if tokenConfig.TTL <= 0 {
		tokenConfig.TTL = DefaultTokenTTL
	}

	return &SignInHandler{
		authenticator:     authenticator,
		privateKeyFetcher: privateKeyFetcher,
		tokenConfig:       tokenConfig,
		logger:            logger,
	}
}
