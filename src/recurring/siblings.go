package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finsight-server/src/models"
	"finsight-server/src/rules"

	"github.com/agnivade/levenshtein"
)

// Matcher decides whether an event payee belongs to a stream payee.
type Matcher interface {
	Match(streamPayee, eventPayee string) bool
}

// ExactMatcher compares trimmed names case-insensitively.
type ExactMatcher struct{}

func (ExactMatcher) Match(streamPayee, eventPayee string) bool {
	a, b := strings.TrimSpace(streamPayee), strings.TrimSpace(eventPayee)
	return a != "" && strings.EqualFold(a, b)
}

// FuzzyMatcher accepts sanitized names within MaxDistance edits.
type FuzzyMatcher struct {
	MaxDistance int
}

func (m FuzzyMatcher) Match(streamPayee, eventPayee string) bool {
	a, b := rules.Sanitize(streamPayee), rules.Sanitize(eventPayee)
	if a == "" || b == "" {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= m.MaxDistance
}

type EventSource interface {
	QueryEvents(ctx context.Context, userID int64, accountID *string, start, end time.Time) ([]models.MoneyEvent, error)
}

// SiblingFinder finds the money events that belong to a recurring stream.
// The relationship is derived from the payee name and owning user, not stored,
// so events on any of the user's accounts qualify.
type SiblingFinder struct {
	events   EventSource
	matcher  Matcher
	lookback time.Duration
	now      func() time.Time
}

func NewSiblingFinder(events EventSource, matcher Matcher) *SiblingFinder {
	if matcher == nil {
		matcher = ExactMatcher{}
	}
	return &SiblingFinder{events: events, matcher: matcher, now: time.Now}
}

// WithLookback limits the search to events no older than d before today.
// Zero searches the user's whole history.
func (f *SiblingFinder) WithLookback(d time.Duration) *SiblingFinder {
	f.lookback = d
	return f
}

// FindSiblings searches up to today, not the stream's last date, since the
// provider's last date often trails the ledger.
func (f *SiblingFinder) FindSiblings(ctx context.Context, stream models.RecurringStream) ([]models.MoneyEvent, error) {
	end := f.now()
	if stream.LastDate.After(end) {
		end = stream.LastDate
	}
	var start time.Time
	if f.lookback > 0 {
		start = end.Add(-f.lookback)
	}
	events, err := f.events.QueryEvents(ctx, stream.UserID, nil, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for stream %s: %w", stream.StreamID, err)
	}
	siblings := []models.MoneyEvent{}
	for _, e := range events {
		if f.matcher.Match(stream.PayeeName, e.PayeeName) {
			siblings = append(siblings, e)
		}
	}
	return siblings, nil
}
