package rules

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

func TestApplyToEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	day := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	already := "coffee"
	store.AddEvent(models.MoneyEvent{ID: "e1", UserID: userID, Date: day, Amount: decimal.NewFromInt(-5), PayeeName: "Starbucks 01", PrimaryCategory: "FOOD_AND_DRINK"})
	store.AddEvent(models.MoneyEvent{ID: "e2", UserID: userID, Date: day, Amount: decimal.NewFromInt(-6), PayeeName: "Starbucks 02", CategoryID: &already})
	store.AddEvent(models.MoneyEvent{ID: "e3", UserID: userID, Date: day, Amount: decimal.NewFromInt(-60), PayeeName: "Shell Oil", PrimaryCategory: "TRANSPORTATION"})
	store.AddEvent(models.MoneyEvent{ID: "e4", UserID: userID + 1, Date: day, Amount: decimal.NewFromInt(-5), PayeeName: "Starbucks 03"})

	engine := newTestEngine(store)
	require.NoError(t, engine.Learn(ctx, userID, Signal{PrimaryCategory: "FOOD_AND_DRINK", Name: "Starbucks 77"}, "coffee"))

	result, err := NewApplier(engine, store).ApplyToEvents(ctx, userID, day, day)
	require.NoError(t, err)
	require.Len(t, result.Adjusted, 1)
	assert.Equal(t, "e1", result.Adjusted[0].EventID)
	assert.Nil(t, result.Adjusted[0].From)
	assert.Empty(t, result.Skipped)

	e1, err := store.GetEvent(ctx, userID, "e1")
	require.NoError(t, err)
	require.NotNil(t, e1.CategoryID)
	assert.Equal(t, "coffee", *e1.CategoryID)

	e4, err := store.GetEvent(ctx, userID+1, "e4")
	require.NoError(t, err)
	assert.Nil(t, e4.CategoryID)
}

func TestCategorize(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddEvent(models.MoneyEvent{ID: "e1", UserID: userID, Date: time.Now(), PayeeName: "Spotify USA", PrimaryCategory: "ENTERTAINMENT"})
	engine := newTestEngine(store)
	applier := NewApplier(engine, store)

	adj, err := applier.Categorize(ctx, userID, "e1")
	require.NoError(t, err)
	assert.Nil(t, adj, "no rules yet")

	require.NoError(t, engine.Learn(ctx, userID, Signal{PrimaryCategory: "ENTERTAINMENT", Name: "Hulu"}, "streaming"))
	adj, err = applier.Categorize(ctx, userID, "e1")
	require.NoError(t, err)
	require.NotNil(t, adj)
	assert.Equal(t, "streaming", adj.To)

	_, err = applier.Categorize(ctx, userID, "missing")
	assert.Error(t, err)
}

func TestApplyLeavesTransfersAlone(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	day := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	xfer := "xfer"
	store.AddCategory(models.Category{ID: "xfer", UserID: userID, Name: "Transfers", Type: models.CategoryTransfer})
	store.AddCategory(models.Category{ID: "shopping", UserID: userID, Name: "Shopping", Type: models.CategoryExpense})
	store.AddEvent(models.MoneyEvent{ID: "t1", UserID: userID, Date: day, Amount: decimal.NewFromInt(-40), PayeeName: "Venmo 1234", CategoryID: &xfer})
	store.AddEvent(models.MoneyEvent{ID: "t2", UserID: userID, Date: day, Amount: decimal.NewFromInt(-25), PayeeName: "Venmo 5678", PrimaryCategory: "TRANSFER_OUT"})
	store.AddEvent(models.MoneyEvent{ID: "s1", UserID: userID, Date: day, Amount: decimal.NewFromInt(-10), PayeeName: "Venmo 4321", PrimaryCategory: "GENERAL_SERVICES"})

	engine := newTestEngine(store)
	require.NoError(t, engine.Learn(ctx, userID, Signal{PrimaryCategory: "GENERAL_SERVICES", Name: "Venmo 99"}, "shopping"))
	applier := NewApplier(engine, store)

	result, err := applier.ApplyToEvents(ctx, userID, day, day)
	require.NoError(t, err)
	require.Len(t, result.Adjusted, 1)
	assert.Equal(t, "s1", result.Adjusted[0].EventID)

	adj, err := applier.Categorize(ctx, userID, "t1")
	require.NoError(t, err)
	assert.Nil(t, adj)

	t1, err := store.GetEvent(ctx, userID, "t1")
	require.NoError(t, err)
	assert.Equal(t, "xfer", *t1.CategoryID)
	t2, err := store.GetEvent(ctx, userID, "t2")
	require.NoError(t, err)
	assert.Nil(t, t2.CategoryID)
}
