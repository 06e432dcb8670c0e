package recurring

import (
	"context"
	"fmt"
)

// Fetcher lists the streams a provider has detected for one linked item.
type Fetcher interface {
	FetchStreams(ctx context.Context, accessToken string) ([]StreamInput, error)
}

type TokenSource interface {
	GetAccessToken(ctx context.Context, userID int64, itemID string) (string, error)
}

// ItemSync pulls an item's streams from the provider and synchronizes them.
type ItemSync struct {
	tokens  TokenSource
	fetcher Fetcher
	sync    *Synchronizer
}

func NewItemSync(tokens TokenSource, fetcher Fetcher, sync *Synchronizer) *ItemSync {
	return &ItemSync{tokens: tokens, fetcher: fetcher, sync: sync}
}

func (i *ItemSync) Run(ctx context.Context, userID int64, itemID string) (SyncResult, error) {
	token, err := i.tokens.GetAccessToken(ctx, userID, itemID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to get access token for item %s: %w", itemID, err)
	}
	inputs, err := i.fetcher.FetchStreams(ctx, token)
	if err != nil {
		return SyncResult{}, err
	}
	return i.sync.Sync(ctx, userID, inputs)
}
