// Package auth logs the back-office admin in.
package auth

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

// dummyHash keeps a login with an unknown email as slow as one with a wrong password.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z5SY2Bd6S1T3Kqzeqo6AXx3e"

type PasswordVerifier interface {
	Verify(password, hash string) error
}

type TokenIssuer interface {
	Generate(email string) (token string, expiresAt time.Time, err error)
}

type LoginCommand struct {
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type LoginUseCase struct {
	adminEmail   string
	passwordHash string
	hasher       PasswordVerifier
	tokens       TokenIssuer
	logger       logger.Interface
}

func NewLoginUseCase(adminEmail, passwordHash string, hasher PasswordVerifier, tokens TokenIssuer, logger logger.Interface) *LoginUseCase {
	return &LoginUseCase{
		adminEmail:   strings.ToLower(strings.TrimSpace(adminEmail)),
		passwordHash: passwordHash,
		hasher:       hasher,
		tokens:       tokens,
		logger:       logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if uc.adminEmail == "" || uc.passwordHash == "" {
		uc.logger.Errorw("admin login attempted but no admin account is configured")
		return nil, apperrors.NewUnauthorizedError("admin login is not configured")
	}

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	hash := uc.passwordHash
	emailMatches := email == uc.adminEmail
	if !emailMatches {
		hash = dummyHash
	}
	passwordErr := uc.hasher.Verify(cmd.Password, hash)
	if !emailMatches || passwordErr != nil {
		uc.logger.Warnw("admin login failed", "email", utils.MaskEmail(email))
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, expiresAt, err := uc.tokens.Generate(uc.adminEmail)
	if err != nil {
		uc.logger.Errorw("failed to issue admin token", "error", err)
		return nil, apperrors.NewInternalError("failed to issue token")
	}

	uc.logger.Infow("admin logged in", "email", uc.adminEmail)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Round(time.Second).Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}
