package billing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
)

func moneyILS(t *testing.T, major string) money.Money {
	t.Helper()
	m, err := money.ParseMajor(major, "ILS")
	require.NoError(t, err)
	return m
}
