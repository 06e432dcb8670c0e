package recurring

import (
	"context"
	"errors"
	"testing"

	"finsight-server/src/db"
	"finsight-server/src/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	streams []StreamInput
	err     error
	tokens  []string
}

func (f *stubFetcher) FetchStreams(ctx context.Context, accessToken string) ([]StreamInput, error) {
	f.tokens = append(f.tokens, accessToken)
	return f.streams, f.err
}

func TestItemSyncRun(t *testing.T) {
	store := seededStore()
	store.AddItem(userID, "item-1", "access-1")
	fetcher := &stubFetcher{streams: []StreamInput{coffeeStream("s-1")}}
	items := NewItemSync(store, fetcher, NewSynchronizer(store, rules.NewEngine(store), 2))

	result, err := items.Run(context.Background(), userID, "item-1")
	require.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Equal(t, []string{"access-1"}, fetcher.tokens)
}

func TestItemSyncUnknownItem(t *testing.T) {
	store := seededStore()
	fetcher := &stubFetcher{}
	items := NewItemSync(store, fetcher, NewSynchronizer(store, rules.NewEngine(store), 2))

	_, err := items.Run(context.Background(), userID, "item-9")
	assert.True(t, errors.Is(err, db.ErrNotFound))
	assert.Empty(t, fetcher.tokens)
}

func TestItemSyncProviderFailure(t *testing.T) {
	store := seededStore()
	store.AddItem(userID, "item-1", "access-1")
	items := NewItemSync(store, &stubFetcher{err: errors.New("plaid unavailable")}, NewSynchronizer(store, rules.NewEngine(store), 2))

	_, err := items.Run(context.Background(), userID, "item-1")
	assert.EqualError(t, err, "plaid unavailable")
}
