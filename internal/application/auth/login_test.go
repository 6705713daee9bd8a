package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/testutil"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type plainHasher struct {
	checked []string
}

func (h *plainHasher) Verify(password, hash string) error {
	h.checked = append(h.checked, hash)
	if "plain:"+password != hash {
		return errors.New("mismatch")
	}
	return nil
}

type fixedIssuer struct {
	err error
}

func (i fixedIssuer) Generate(email string) (string, time.Time, error) {
	if i.err != nil {
		return "", time.Time{}, i.err
	}
	return "token-for-" + email, time.Now().Add(time.Hour), nil
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{name: "valid credentials", email: "owner@kesher.co.il", password: "s3cret-pass"},
		{name: "email is case insensitive", email: "  Owner@Kesher.co.il ", password: "s3cret-pass"},
		{name: "wrong password", email: "owner@kesher.co.il", password: "nope", wantErr: true},
		{name: "unknown email", email: "intruder@example.com", password: "s3cret-pass", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := &plainHasher{}
			uc := NewLoginUseCase("owner@kesher.co.il", "plain:s3cret-pass", hasher, fixedIssuer{}, testutil.NewMockLogger())

			res, err := uc.Execute(context.Background(), LoginCommand{Email: tt.email, Password: tt.password})
			require.Len(t, hasher.checked, 1, "the password is always checked")
			if tt.wantErr {
				require.Error(t, err)
				appErr := apperrors.GetAppError(err)
				require.NotNil(t, appErr)
				assert.Equal(t, apperrors.ErrorTypeUnauthorized, appErr.Type)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "token-for-owner@kesher.co.il", res.AccessToken)
			assert.Equal(t, "Bearer", res.TokenType)
			assert.InDelta(t, 3600, res.ExpiresIn, 2)
		})
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	uc := NewLoginUseCase("", "", &plainHasher{}, fixedIssuer{}, testutil.NewMockLogger())
	_, err := uc.Execute(context.Background(), LoginCommand{Email: "a@b.c", Password: "x"})
	assert.Error(t, err)
}

func TestLogin_TokenFailure(t *testing.T) {
	uc := NewLoginUseCase("owner@kesher.co.il", "plain:pw", &plainHasher{}, fixedIssuer{err: errors.New("boom")}, testutil.NewMockLogger())
	_, err := uc.Execute(context.Background(), LoginCommand{Email: "owner@kesher.co.il", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.GetAppError(err).Type)
}
