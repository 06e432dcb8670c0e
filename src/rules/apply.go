package rules

import (
	"context"
	"fmt"
	"time"

	"finsight-server/src/logger"
	"finsight-server/src/models"
)

type EventStore interface {
	QueryEvents(ctx context.Context, userID int64, accountID *string, start, end time.Time) ([]models.MoneyEvent, error)
	GetEvent(ctx context.Context, userID int64, eventID string) (models.MoneyEvent, error)
	UpdateEventCategory(ctx context.Context, userID int64, eventID string, categoryID *string) error
	QueryCategories(ctx context.Context, userID int64) ([]models.Category, error)
}

type Adjustment struct {
	EventID string  `json:"event_id"`
	From    *string `json:"from"`
	To      string  `json:"to"`
}

type Skipped struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

type ApplyResult struct {
	Adjusted []Adjustment `json:"adjusted"`
	Skipped  []Skipped    `json:"skipped"`
}

// Applier writes resolved categories back to money events.
type Applier struct {
	engine *Engine
	events EventStore
}

func NewApplier(engine *Engine, events EventStore) *Applier {
	return &Applier{engine: engine, events: events}
}

// Categorize resolves and stores the category of a single event. It returns
// nil when no rule applies.
func (a *Applier) Categorize(ctx context.Context, userID int64, eventID string) (*Adjustment, error) {
	event, err := a.events.GetEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", eventID, err)
	}
	set, transfers, err := a.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	adj, ok := adjustment(set, transfers, event)
	if !ok {
		return nil, nil
	}
	if err := a.events.UpdateEventCategory(ctx, userID, event.ID, &adj.To); err != nil {
		return nil, fmt.Errorf("failed to update transaction category: %w", err)
	}
	return &adj, nil
}

// ApplyToEvents runs the rule set over every event in [start, end]. A failed
// update skips that event only.
func (a *Applier) ApplyToEvents(ctx context.Context, userID int64, start, end time.Time) (ApplyResult, error) {
	set, transfers, err := a.load(ctx, userID)
	if err != nil {
		return ApplyResult{}, err
	}
	events, err := a.events.QueryEvents(ctx, userID, nil, start, end)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	log := logger.FromContext(ctx)
	result := ApplyResult{Adjusted: []Adjustment{}, Skipped: []Skipped{}}
	for _, event := range events {
		adj, ok := adjustment(set, transfers, event)
		if !ok {
			continue
		}
		if err := a.events.UpdateEventCategory(ctx, userID, event.ID, &adj.To); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Str("event_id", event.ID).Msg("failed to update transaction category")
			result.Skipped = append(result.Skipped, Skipped{EventID: event.ID, Reason: err.Error()})
			continue
		}
		result.Adjusted = append(result.Adjusted, adj)
	}
	log.Info().Int64("user_id", userID).Int("adjusted", len(result.Adjusted)).Int("skipped", len(result.Skipped)).
		Msg("applied categorization rules")
	return result, nil
}

// load returns the user's rules and the ids of their transfer categories.
func (a *Applier) load(ctx context.Context, userID int64) (*RuleSet, map[string]struct{}, error) {
	set, err := a.engine.RuleSet(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	cats, err := a.events.QueryCategories(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	transfers := make(map[string]struct{})
	for _, c := range cats {
		if c.IsTransfer() {
			transfers[c.ID] = struct{}{}
		}
	}
	return set, transfers, nil
}

// adjustment never moves a transfer: neither an event filed under a transfer
// category nor one the provider marked as a transfer.
func adjustment(set *RuleSet, transfers map[string]struct{}, event models.MoneyEvent) (Adjustment, bool) {
	if IsTransferPrimary(event.PrimaryCategory) {
		return Adjustment{}, false
	}
	if event.CategoryID != nil {
		if _, ok := transfers[*event.CategoryID]; ok {
			return Adjustment{}, false
		}
	}
	categoryID, ok := set.Resolve(event.PrimaryCategory, event.PayeeName)
	if !ok {
		return Adjustment{}, false
	}
	if event.CategoryID != nil && *event.CategoryID == categoryID {
		return Adjustment{}, false
	}
	return Adjustment{EventID: event.ID, From: event.CategoryID, To: categoryID}, true
}
