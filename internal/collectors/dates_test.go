package collectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

func kstDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, models.KST)
}

func TestParseAPIDate(t *testing.T) {
	parsed, err := parseAPIDate("Wed, 20 Mar 2024 14:30:00 +0900")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 20, 14, 30, 0, 0, models.KST), parsed)
	assert.Equal(t, "KST", parsed.Location().String())

	_, err = parseAPIDate("2024-03-20")
	require.Error(t, err)
}

func TestExtractAbsoluteDate(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"연합뉴스 2024.03.05. 네이버뉴스", "2024.03.05"},
		{"2024.3.5.", "2024.03.05"},
		{"3일 전", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractAbsoluteDate(tt.text), "text=%q", tt.text)
	}
}

func TestParseAbsoluteDate(t *testing.T) {
	parsed, err := parseAbsoluteDate("2024.03.05")
	require.NoError(t, err)
	assert.Equal(t, kstDate(2024, 3, 5), parsed)
}

func TestPlanSearchRangeAllRecent(t *testing.T) {
	now := time.Date(2024, 6, 20, 10, 0, 0, 0, models.KST)

	plan := planSearchRange(now, kstDate(2024, 6, 15), kstDate(2024, 6, 18))

	require.False(t, plan.HasRange())
	require.Len(t, plan.DailyDates, 4)
	assert.Equal(t, kstDate(2024, 6, 18), plan.DailyDates[0])
	assert.Equal(t, kstDate(2024, 6, 15), plan.DailyDates[3])
}

func TestPlanSearchRangeStraddlesThreshold(t *testing.T) {
	now := time.Date(2024, 6, 20, 10, 0, 0, 0, models.KST)
	threshold := kstDate(2024, 5, 16) // 35 days before now

	plan := planSearchRange(now, kstDate(2024, 5, 1), kstDate(2024, 6, 20))

	require.True(t, plan.HasRange())
	assert.Equal(t, kstDate(2024, 5, 1), plan.RangeStart)
	assert.Equal(t, threshold, plan.RangeEnd)

	require.NotEmpty(t, plan.DailyDates)
	assert.Equal(t, kstDate(2024, 6, 20), plan.DailyDates[0])
	oldestDaily := plan.DailyDates[len(plan.DailyDates)-1]
	assert.Equal(t, threshold.AddDate(0, 0, 1), oldestDaily,
		"daily paging must start the day after the range ends")
}

func TestPlanSearchRangeAllOld(t *testing.T) {
	now := time.Date(2024, 6, 20, 10, 0, 0, 0, models.KST)

	plan := planSearchRange(now, kstDate(2024, 1, 1), kstDate(2024, 2, 1))

	assert.Empty(t, plan.DailyDates)
	require.True(t, plan.HasRange())
	assert.Equal(t, kstDate(2024, 1, 1), plan.RangeStart)
	assert.Equal(t, kstDate(2024, 2, 1), plan.RangeEnd)
}
