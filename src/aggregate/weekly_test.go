package aggregate

import (
	"testing"
	"time"

	"finsight-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyNetBucketsFromEarliestEvent(t *testing.T) {
	events := []models.MoneyEvent{
		event("3", 20, "-5", "food"),
		event("1", 3, "100", "salary"),
		event("2", 9, "-40", "food"),
		event("4", 10, "-10", "food"),
		event("5", 4, "-1000", "xfer"),
	}

	weeks := WeeklyNet(events, testCategories())
	require.Len(t, weeks, 3)
	assert.Equal(t, "60", weeks[0].String(), "days 3-9")
	assert.Equal(t, "-10", weeks[1].String(), "days 10-16")
	assert.Equal(t, "-5", weeks[2].String(), "days 17-23")
}

func TestWeeklyNetKeepsNewestFiftyTwo(t *testing.T) {
	start := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	var events []models.MoneyEvent
	for i := 0; i < 60; i++ {
		events = append(events, models.MoneyEvent{
			ID:     "e",
			Date:   start.AddDate(0, 0, 7*i),
			Amount: decimal.NewFromInt(int64(i)),
		})
	}

	weeks := WeeklyNet(events, testCategories())
	require.Len(t, weeks, MaxWeeks)
	assert.Equal(t, "8", weeks[0].String())
	assert.Equal(t, "59", weeks[MaxWeeks-1].String())
}

func TestWeeklyNetEmpty(t *testing.T) {
	assert.Empty(t, WeeklyNet(nil, testCategories()))
	assert.Empty(t, Floats(nil))
	assert.Equal(t, []float64{1.5, -2}, Floats([]decimal.Decimal{decimal.RequireFromString("1.5"), decimal.NewFromInt(-2)}))
}
