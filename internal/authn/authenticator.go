package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password alike
var ErrInvalidCredentials = errors.New("invalid email or password")

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// UserStore looks up accounts by email
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// dummyHash stands in for the stored hash when the email is unknown
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("canteen-unknown-account"), bcrypt.DefaultCost)
	return hash
})

type passwordAuthenticator struct {
	users   UserStore
	compare func(hash, password []byte) error
}

// Authenticate verifies password against the bcrypt hash stored for email.
func (a *passwordAuthenticator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			_ = a.compare(dummyHash(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := a.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func NewPasswordAuthenticator(users UserStore) Authenticator {
	return &passwordAuthenticator{users: users, compare: bcrypt.CompareHashAndPassword}
}

// HashPassword returns the bcrypt hash stored for a new account
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", domain.NewValidationError("password", "Password must be at least 8 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}
