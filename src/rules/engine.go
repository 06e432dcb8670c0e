// Package rules learns and applies priority-ordered categorization rules
// keyed by sanitized transaction name or provider primary category.
package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finsight-server/src/logger"
	"finsight-server/src/models"

	"github.com/google/uuid"
)

// LearnedPriority is the priority of rules created by Learn.
const LearnedPriority = 1

type Store interface {
	QueryRules(ctx context.Context, userID int64) ([]models.CategorizationRule, error)
	InsertCategorizationRule(ctx context.Context, rule models.CategorizationRule) error
}

// RuleWriteFailure wraps a failed rule insert. It is best-effort: callers log
// it and carry on without a category.
type RuleWriteFailure struct {
	Key Key
	Err error
}

func (e *RuleWriteFailure) Error() string {
	return fmt.Sprintf("failed to write %s rule %q: %v", e.Key.Type, e.Key.Value, e.Err)
}

func (e *RuleWriteFailure) Unwrap() error {
	return e.Err
}

// Signal is what a transaction or stream offers for categorization.
type Signal struct {
	PrimaryCategory  string
	DetailedCategory string
	Name             string
}

type Engine struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// RuleSet loads the user's full rule set.
func (e *Engine) RuleSet(ctx context.Context, userID int64) (*RuleSet, error) {
	rules, err := e.store.QueryRules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categorization rules: %w", err)
	}
	return NewRuleSet(rules), nil
}

// Resolve returns the category for a signal, or nil when no rule applies.
func (e *Engine) Resolve(ctx context.Context, userID int64, primary, name string) (*string, error) {
	set, err := e.RuleSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if categoryID, ok := set.Resolve(primary, name); ok {
		return &categoryID, nil
	}
	return nil, nil
}

// Learn records inferredCategoryID for the signal's provider category and
// sanitized name unless rules for them already exist. Existing name rules are
// never overwritten. Transfers are skipped. Failed inserts come back as
// *RuleWriteFailure.
func (e *Engine) Learn(ctx context.Context, userID int64, sig Signal, inferredCategoryID string) error {
	if IsTransfer(sig.DetailedCategory) || IsTransferPrimary(sig.PrimaryCategory) || inferredCategoryID == "" {
		return nil
	}
	set, err := e.RuleSet(ctx, userID)
	if err != nil {
		return err
	}

	var failures []error
	for _, k := range []Key{PrimaryKey(sig.PrimaryCategory), NameKey(sig.Name)} {
		if k.Value == "" || set.Has(k) {
			continue
		}
		rule := models.CategorizationRule{
			ID:         e.newID(),
			UserID:     userID,
			MatchType:  k.Type,
			MatchValue: k.Value,
			CategoryID: inferredCategoryID,
			Priority:   LearnedPriority,
			CreatedAt:  e.now().UTC(),
		}
		if err := e.store.InsertCategorizationRule(ctx, rule); err != nil {
			failures = append(failures, &RuleWriteFailure{Key: k, Err: err})
			continue
		}
		set.Add(rule)
		log := logger.FromContext(ctx)
		log.Debug().Int64("user_id", userID).Str("match_type", string(k.Type)).Str("match_value", k.Value).
			Str("category_id", inferredCategoryID).Msg("learned categorization rule")
	}
	return errors.Join(failures...)
}
