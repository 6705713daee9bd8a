package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfMonthUTC_UsesBusinessZone(t *testing.T) {
	require.NoError(t, Init("Asia/Jerusalem"))

	// 22:30 UTC on Jan 31 is already Feb 1 in Jerusalem (UTC+2).
	ts := time.Date(2025, 1, 31, 22, 30, 0, 0, time.UTC)
	got := StartOfMonthUTC(ts)

	assert.Equal(t, time.Date(2025, 1, 31, 22, 0, 0, 0, time.UTC), got)
	assert.Equal(t, "2025-02", MonthKey(ts))
}

func TestAddMonthsUTC(t *testing.T) {
	require.NoError(t, Init("Asia/Jerusalem"))

	ts := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	got := AddMonthsUTC(ts, -11)
	assert.Equal(t, "2024-04", MonthKey(got))
	assert.Equal(t, "2025-04", MonthKey(AddMonthsUTC(ts, 1)))
}

func TestParseDate(t *testing.T) {
	require.NoError(t, Init("Asia/Jerusalem"))

	got, err := ParseDate("2025-07-01")
	require.NoError(t, err)
	// Israel is on summer time (UTC+3) in July.
	assert.Equal(t, time.Date(2025, 6, 30, 21, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("01/07/2025")
	assert.Error(t, err)
}
