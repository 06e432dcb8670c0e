// Package recurring ingests provider-detected recurring streams. Ingestion is
// create-if-absent per stream id; existing records are never updated.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"finsight-server/src/db"
	"finsight-server/src/logger"
	"finsight-server/src/models"
	"finsight-server/src/rules"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StreamInput is a stream as reported by the provider. Amounts use the
// provider's convention where outflows are positive.
type StreamInput struct {
	StreamID          string
	ExternalAccountID string
	Description       string
	MerchantName      string
	Frequency         string
	AverageAmount     decimal.Decimal
	LastAmount        decimal.Decimal
	LastDate          time.Time
	IsActive          bool
	PrimaryCategory   string
	DetailedCategory  string
}

// UnresolvedAccountError means the stream's account is not linked for the user.
type UnresolvedAccountError struct {
	StreamID          string
	ExternalAccountID string
}

func (e *UnresolvedAccountError) Error() string {
	return fmt.Sprintf("stream %s: no account for %s", e.StreamID, e.ExternalAccountID)
}

type Store interface {
	QueryRecurringStreams(ctx context.Context, userID int64) ([]models.RecurringStream, error)
	InsertRecurringStream(ctx context.Context, stream models.RecurringStream) (bool, error)
	QueryCategories(ctx context.Context, userID int64) ([]models.Category, error)
	ResolveAccount(ctx context.Context, userID int64, externalAccountID string) (string, error)
}

type SkippedStream struct {
	StreamID string `json:"stream_id"`
	Reason   string `json:"reason"`
}

type SyncResult struct {
	Created []models.RecurringStream `json:"created"`
	Skipped []SkippedStream          `json:"skipped"`
}

type Synchronizer struct {
	store       Store
	engine      *rules.Engine
	concurrency int
	now         func() time.Time
	newID       func() string
}

func NewSynchronizer(store Store, engine *rules.Engine, concurrency int) *Synchronizer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Synchronizer{
		store:       store,
		engine:      engine,
		concurrency: concurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Sync creates a record for every stream id not yet stored for the user and
// returns only the new records. A stream that fails is skipped and reported;
// the rest of the batch continues. If ctx is cancelled mid-batch the streams
// already stored are still returned, alongside the context error.
func (s *Synchronizer) Sync(ctx context.Context, userID int64, inputs []StreamInput) (SyncResult, error) {
	existing, err := s.store.QueryRecurringStreams(ctx, userID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to fetch recurring streams: %w", err)
	}
	categories, err := s.store.QueryCategories(ctx, userID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to fetch categories: %w", err)
	}

	seen := make(map[string]struct{}, len(existing)+len(inputs))
	for _, stream := range existing {
		seen[stream.StreamID] = struct{}{}
	}

	var mu sync.Mutex
	result := SyncResult{Created: []models.RecurringStream{}, Skipped: []SkippedStream{}}
	claim := func(streamID string) bool {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := seen[streamID]; ok {
			return false
		}
		seen[streamID] = struct{}{}
		return true
	}

	log := logger.FromContext(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, in := range inputs {
		in := in
		if !claim(in.StreamID) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stream, created, err := s.syncOne(gctx, userID, in, categories)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				log.Warn().Err(err).Int64("user_id", userID).Str("stream_id", in.StreamID).Msg("skipped recurring stream")
				result.Skipped = append(result.Skipped, SkippedStream{StreamID: in.StreamID, Reason: err.Error()})
			case created:
				result.Created = append(result.Created, stream)
			}
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	sort.Slice(result.Created, func(i, j int) bool { return result.Created[i].StreamID < result.Created[j].StreamID })
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i].StreamID < result.Skipped[j].StreamID })
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Int("created", len(result.Created)).Msg("recurring sync interrupted")
		return result, err
	}
	log.Info().Int64("user_id", userID).Int("created", len(result.Created)).Int("skipped", len(result.Skipped)).
		Msg("synced recurring streams")
	return result, nil
}

func (s *Synchronizer) syncOne(ctx context.Context, userID int64, in StreamInput, categories []models.Category) (models.RecurringStream, bool, error) {
	accountID, err := s.store.ResolveAccount(ctx, userID, in.ExternalAccountID)
	if errors.Is(err, db.ErrNotFound) {
		return models.RecurringStream{}, false, &UnresolvedAccountError{StreamID: in.StreamID, ExternalAccountID: in.ExternalAccountID}
	}
	if err != nil {
		return models.RecurringStream{}, false, fmt.Errorf("failed to resolve account: %w", err)
	}

	payee := in.MerchantName
	if strings.TrimSpace(payee) == "" {
		payee = in.Description
	}
	stream := models.RecurringStream{
		ID:            s.newID(),
		UserID:        userID,
		StreamID:      in.StreamID,
		Name:          strings.TrimSpace(in.Description),
		PayeeName:     DisplayCase(payee),
		AccountID:     accountID,
		CategoryID:    s.categorize(ctx, userID, in, payee, categories),
		Frequency:     DisplayCase(in.Frequency),
		AverageAmount: in.AverageAmount.Neg(),
		LastAmount:    in.LastAmount.Neg(),
		LastDate:      in.LastDate,
		IsActive:      in.IsActive,
		CreatedAt:     s.now().UTC(),
	}

	created, err := s.store.InsertRecurringStream(ctx, stream)
	if err != nil {
		return models.RecurringStream{}, false, fmt.Errorf("failed to save recurring stream: %w", err)
	}
	return stream, created, nil
}

// categorize learns from the stream and resolves its category. Any rule
// failure leaves the stream uncategorized.
func (s *Synchronizer) categorize(ctx context.Context, userID int64, in StreamInput, payee string, categories []models.Category) *string {
	if rules.IsTransfer(in.DetailedCategory) || rules.IsTransferPrimary(in.PrimaryCategory) {
		return nil
	}
	log := logger.FromContext(ctx)
	sig := rules.Signal{PrimaryCategory: in.PrimaryCategory, DetailedCategory: in.DetailedCategory, Name: payee}
	if inferred := InferCategory(in.PrimaryCategory, categories); inferred != "" {
		if err := s.engine.Learn(ctx, userID, sig, inferred); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Str("stream_id", in.StreamID).Msg("failed to learn categorization rule")
			return nil
		}
	}
	categoryID, err := s.engine.Resolve(ctx, userID, sig.PrimaryCategory, sig.Name)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Str("stream_id", in.StreamID).Msg("failed to resolve category")
		return nil
	}
	return categoryID
}

// DisplayCase turns provider labels such as "SEMI_MONTHLY" or "STARBUCKS"
// into "Semi Monthly" and "Starbucks".
func DisplayCase(s string) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
	return cases.Title(language.English).String(strings.ToLower(s))
}

// InferCategory matches a provider primary category against the user's
// category names, falling back to a category named "Other".
func InferCategory(primary string, categories []models.Category) string {
	want := normalizeName(primary)
	fallback := ""
	for _, c := range categories {
		if c.IsTransfer() {
			continue
		}
		name := normalizeName(c.Name)
		if want != "" && name == want {
			return c.ID
		}
		if name == "other" && fallback == "" {
			fallback = c.ID
		}
	}
	return fallback
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	s = strings.ReplaceAll(s, "&", " and ")
	return strings.Join(strings.Fields(s), " ")
}
