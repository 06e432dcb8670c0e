package recurring

import (
	"context"
	"testing"
	"time"

	"finsight-server/src/db/memory"
	"finsight-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSiblings(t *testing.T) {
	store := memory.NewStore()
	last := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	today := last.AddDate(0, 0, 20)
	add := func(id string, user int64, account, payee string, daysBefore int) {
		store.AddEvent(models.MoneyEvent{
			ID: id, UserID: user, AccountID: account, PayeeName: payee,
			Date: last.AddDate(0, 0, -daysBefore), Amount: decimal.NewFromInt(-15),
		})
	}
	add("e1", userID, "acc-1", "NETFLIX.COM", 0)
	add("e2", userID, "acc-1", "Netflix.com", 30)
	add("e3", userID, "acc-1", "NETFLIX.COM 8841", 60)
	add("e4", userID, "acc-2", "NETFLIX.COM", 45)
	add("e5", userID, "acc-1", "NETFLIX.COM", 400)
	add("e6", userID, "acc-1", "Hulu", 10)
	add("e7", userID, "acc-1", "Netflix.com", -15)
	add("e8", userID+1, "acc-9", "Netflix.com", 5)

	stream := models.RecurringStream{UserID: userID, StreamID: "s-1", AccountID: "acc-1", PayeeName: "Netflix.com", LastDate: last}
	finder := func(m Matcher) *SiblingFinder {
		f := NewSiblingFinder(store, m)
		f.now = func() time.Time { return today }
		return f
	}

	exact, err := finder(nil).FindSiblings(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"e5", "e4", "e2", "e1", "e7"}, ids(exact), "every account of the user, past the last date")

	fuzzy, err := finder(FuzzyMatcher{MaxDistance: 1}).FindSiblings(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"e5", "e3", "e4", "e2", "e1", "e7"}, ids(fuzzy))

	recent, err := finder(nil).WithLookback(90*24*time.Hour).FindSiblings(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e2", "e1", "e7"}, ids(recent))
}

func TestMatchers(t *testing.T) {
	assert.True(t, ExactMatcher{}.Match(" Spotify ", "SPOTIFY"))
	assert.False(t, ExactMatcher{}.Match("", ""))
	assert.True(t, FuzzyMatcher{MaxDistance: 2}.Match("Comcast Cable", "COMCAST CABEL 0042"))
	assert.False(t, FuzzyMatcher{MaxDistance: 2}.Match("Comcast", "Verizon"))
}

func ids(events []models.MoneyEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
