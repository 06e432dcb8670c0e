package recurring

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsight-server/src/db/memory"
	"finsight-server/src/models"
	"finsight-server/src/rules"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID int64 = 42

type failingRules struct {
	*memory.Store
}

func (f failingRules) InsertCategorizationRule(ctx context.Context, rule models.CategorizationRule) error {
	return errors.New("rules table unavailable")
}

// cancelAfterInsert cancels the sync's context once the first stream is stored.
type cancelAfterInsert struct {
	*memory.Store
	cancel context.CancelFunc
}

func (c cancelAfterInsert) InsertRecurringStream(ctx context.Context, stream models.RecurringStream) (bool, error) {
	created, err := c.Store.InsertRecurringStream(ctx, stream)
	c.cancel()
	return created, err
}

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.AddAccount(userID, "plaid-acc-1", "acc-1")
	store.AddCategory(models.Category{ID: "food", UserID: userID, Name: "Food & Drink", Type: models.CategoryExpense})
	store.AddCategory(models.Category{ID: "other", UserID: userID, Name: "Other", Type: models.CategoryExpense})
	store.AddCategory(models.Category{ID: "savings", UserID: userID, Name: "Transfer Out", Type: models.CategoryTransfer})
	return store
}

func coffeeStream(id string) StreamInput {
	return StreamInput{
		StreamID:          id,
		ExternalAccountID: "plaid-acc-1",
		Description:       "STARBUCKS STORE 1123",
		MerchantName:      "STARBUCKS",
		Frequency:         "WEEKLY",
		AverageAmount:     decimal.RequireFromString("6.25"),
		LastAmount:        decimal.RequireFromString("5.95"),
		LastDate:          time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		IsActive:          true,
		PrimaryCategory:   "FOOD_AND_DRINK",
		DetailedCategory:  "FOOD_AND_DRINK_COFFEE",
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	sync := NewSynchronizer(store, rules.NewEngine(store), 4)

	first, err := sync.Sync(ctx, userID, []StreamInput{coffeeStream("s-1")})
	require.NoError(t, err)
	require.Len(t, first.Created, 1)

	second, err := sync.Sync(ctx, userID, []StreamInput{coffeeStream("s-1")})
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Empty(t, second.Skipped, "existing streams are not errors")

	stored, err := store.QueryRecurringStreams(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSyncDuplicateWithinBatch(t *testing.T) {
	store := seededStore()
	sync := NewSynchronizer(store, rules.NewEngine(store), 8)

	result, err := sync.Sync(context.Background(), userID, []StreamInput{coffeeStream("s-1"), coffeeStream("s-1"), coffeeStream("s-2")})
	require.NoError(t, err)
	assert.Len(t, result.Created, 2)
}

func TestSyncReturnsStoredStreamsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := seededStore()
	sync := NewSynchronizer(cancelAfterInsert{Store: store, cancel: cancel}, rules.NewEngine(store), 1)

	result, err := sync.Sync(ctx, userID, []StreamInput{coffeeStream("s-1"), coffeeStream("s-2"), coffeeStream("s-3")})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, result.Created, 1)
	assert.Equal(t, "s-1", result.Created[0].StreamID)
	assert.Empty(t, result.Skipped)

	stored, err := store.QueryRecurringStreams(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSyncNormalizesRecord(t *testing.T) {
	store := seededStore()
	sync := NewSynchronizer(store, rules.NewEngine(store), 1)

	result, err := sync.Sync(context.Background(), userID, []StreamInput{coffeeStream("s-1")})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)

	got := result.Created[0]
	assert.Equal(t, "acc-1", got.AccountID)
	assert.Equal(t, "Starbucks", got.PayeeName)
	assert.Equal(t, "Weekly", got.Frequency)
	assert.Equal(t, "STARBUCKS STORE 1123", got.Name)
	assert.Equal(t, "-6.25", got.AverageAmount.String())
	assert.Equal(t, "-5.95", got.LastAmount.String())
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, "food", *got.CategoryID)
}

func TestSyncSkipsUnresolvedAccount(t *testing.T) {
	store := seededStore()
	sync := NewSynchronizer(store, rules.NewEngine(store), 2)

	orphan := coffeeStream("s-orphan")
	orphan.ExternalAccountID = "plaid-acc-unknown"
	result, err := sync.Sync(context.Background(), userID, []StreamInput{orphan, coffeeStream("s-1")})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "s-orphan", result.Skipped[0].StreamID)
}

func TestSyncLeavesTransfersUncategorized(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	sync := NewSynchronizer(store, rules.NewEngine(store), 1)

	transfer := coffeeStream("s-xfer")
	transfer.MerchantName = ""
	transfer.Description = "ONLINE TRANSFER TO SAV 4410"
	transfer.PrimaryCategory = "TRANSFER_OUT"
	transfer.DetailedCategory = "TRANSFER_OUT_SAVINGS"

	result, err := sync.Sync(ctx, userID, []StreamInput{transfer})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Nil(t, result.Created[0].CategoryID)
	assert.Equal(t, "Online Transfer To Sav 4410", result.Created[0].PayeeName)

	stored, err := store.QueryRules(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSyncRuleWriteFailureLeavesCategoryNil(t *testing.T) {
	store := seededStore()
	sync := NewSynchronizer(store, rules.NewEngine(failingRules{store}), 1)

	result, err := sync.Sync(context.Background(), userID, []StreamInput{coffeeStream("s-1")})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Nil(t, result.Created[0].CategoryID)
	assert.Empty(t, result.Skipped)
}

func TestSyncFallsBackToOther(t *testing.T) {
	store := seededStore()
	sync := NewSynchronizer(store, rules.NewEngine(store), 1)

	gym := coffeeStream("s-gym")
	gym.MerchantName = "Planet Fitness"
	gym.PrimaryCategory = "PERSONAL_CARE"
	gym.DetailedCategory = "PERSONAL_CARE_GYMS_AND_FITNESS_CENTERS"

	result, err := sync.Sync(context.Background(), userID, []StreamInput{gym})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	require.NotNil(t, result.Created[0].CategoryID)
	assert.Equal(t, "other", *result.Created[0].CategoryID)
}

func TestDisplayCase(t *testing.T) {
	assert.Equal(t, "Semi Monthly", DisplayCase("SEMI_MONTHLY"))
	assert.Equal(t, "Annually", DisplayCase("annually"))
	assert.Equal(t, "Trader Joe's", DisplayCase("  TRADER   JOE'S "))
	assert.Equal(t, "", DisplayCase(""))
}

func TestInferCategory(t *testing.T) {
	cats := []models.Category{
		{ID: "xfer", Name: "Transfer In", Type: models.CategoryTransfer},
		{ID: "food", Name: "food and drink", Type: models.CategoryExpense},
		{ID: "other", Name: "OTHER", Type: models.CategoryExpense},
	}
	assert.Equal(t, "food", InferCategory("FOOD_AND_DRINK", cats))
	assert.Equal(t, "other", InferCategory("TRAVEL", cats))
	assert.Equal(t, "other", InferCategory("TRANSFER_IN", cats), "transfer categories are never inferred")
	assert.Equal(t, "", InferCategory("TRAVEL", cats[:2]))
}
