package common

import (
	"strings"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

// ParseAmount reads a major-unit amount such as "1250.90". An empty value is zero.
func ParseAmount(value, currency, field string) (money.Money, error) {
	if strings.TrimSpace(value) == "" {
		return money.Zero(currency), nil
	}
	m, err := money.ParseMajor(value, currency)
	if err != nil {
		return money.Money{}, apperrors.NewValidationError("invalid "+field, err.Error())
	}
	return m, nil
}

// ValidationError wraps a domain constructor error for the client.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.GetAppError(err) != nil {
		return err
	}
	return apperrors.NewValidationError(err.Error())
}
