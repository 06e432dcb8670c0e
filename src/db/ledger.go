package db

import (
	"context"
	"errors"
	"time"

	"finsight-server/src/models"
)

var ErrNotFound = errors.New("not found")

// Ledger is the full store contract. Consumers depend on narrower slices of it.
type Ledger interface {
	QueryEvents(ctx context.Context, userID int64, accountID *string, start, end time.Time) ([]models.MoneyEvent, error)
	GetEvent(ctx context.Context, userID int64, eventID string) (models.MoneyEvent, error)
	UpdateEventCategory(ctx context.Context, userID int64, eventID string, categoryID *string) error

	QueryCategories(ctx context.Context, userID int64) ([]models.Category, error)

	QueryRecurringStreams(ctx context.Context, userID int64) ([]models.RecurringStream, error)
	InsertRecurringStream(ctx context.Context, stream models.RecurringStream) (bool, error)

	QueryRules(ctx context.Context, userID int64) ([]models.CategorizationRule, error)
	InsertCategorizationRule(ctx context.Context, rule models.CategorizationRule) error

	ResolveAccount(ctx context.Context, userID int64, externalAccountID string) (string, error)
	QueryPlaidItems(ctx context.Context, userID int64) ([]models.PlaidItem, error)
	GetAccessToken(ctx context.Context, userID int64, itemID string) (string, error)
	UserForItem(ctx context.Context, itemID string) (int64, error)
}
