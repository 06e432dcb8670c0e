// Package memory is an in-memory ledger. It backs tests and dry runs and is
// safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finsight-server/src/daterange"
	"finsight-server/src/db"
	"finsight-server/src/models"
)

type streamKey struct {
	userID   int64
	streamID string
}

type accountKey struct {
	userID            int64
	externalAccountID string
}

type Store struct {
	mu         sync.RWMutex
	events     map[string]models.MoneyEvent
	categories map[int64][]models.Category
	streams    map[streamKey]models.RecurringStream
	rules      []models.CategorizationRule
	accounts   map[accountKey]string
	items      map[int64]map[string]string
}

func NewStore() *Store {
	return &Store{
		events:     make(map[string]models.MoneyEvent),
		categories: make(map[int64][]models.Category),
		streams:    make(map[streamKey]models.RecurringStream),
		accounts:   make(map[accountKey]string),
		items:      make(map[int64]map[string]string),
	}
}

func (s *Store) AddEvent(e models.MoneyEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
}

func (s *Store) AddCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.UserID] = append(s.categories[c.UserID], c)
}

// AddAccount maps a provider account id to an internal account id.
func (s *Store) AddAccount(userID int64, externalAccountID, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[accountKey{userID, externalAccountID}] = accountID
}

func (s *Store) AddItem(userID int64, itemID, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items[userID] == nil {
		s.items[userID] = make(map[string]string)
	}
	s.items[userID][itemID] = accessToken
}

func (s *Store) QueryEvents(ctx context.Context, userID int64, accountID *string, start, end time.Time) ([]models.MoneyEvent, error) {
	w, err := daterange.New(start, end)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.MoneyEvent{}
	for _, e := range s.events {
		if e.UserID != userID || !w.Contains(e.Date) {
			continue
		}
		if accountID != nil && e.AccountID != *accountID {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) GetEvent(ctx context.Context, userID int64, eventID string) (models.MoneyEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok || e.UserID != userID {
		return models.MoneyEvent{}, fmt.Errorf("transaction %s: %w", eventID, db.ErrNotFound)
	}
	return e, nil
}

func (s *Store) UpdateEventCategory(ctx context.Context, userID int64, eventID string, categoryID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.UserID != userID {
		return fmt.Errorf("transaction %s: %w", eventID, db.ErrNotFound)
	}
	if categoryID != nil {
		id := *categoryID
		categoryID = &id
	}
	e.CategoryID = categoryID
	s.events[eventID] = e
	return nil
}

func (s *Store) QueryCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category{}, s.categories[userID]...), nil
}

func (s *Store) QueryRecurringStreams(ctx context.Context, userID int64) ([]models.RecurringStream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []models.RecurringStream{}
	for k, stream := range s.streams {
		if k.userID == userID {
			result = append(result, stream)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StreamID < result[j].StreamID })
	return result, nil
}

// InsertRecurringStream stores the stream unless its stream id already exists
// for the user, reporting whether it was inserted.
func (s *Store) InsertRecurringStream(ctx context.Context, stream models.RecurringStream) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := streamKey{stream.UserID, stream.StreamID}
	if _, exists := s.streams[k]; exists {
		return false, nil
	}
	s.streams[k] = stream
	return true, nil
}

func (s *Store) QueryRules(ctx context.Context, userID int64) ([]models.CategorizationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []models.CategorizationRule{}
	for _, r := range s.rules {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	return result, nil
}

// InsertCategorizationRule appends; duplicates per key are allowed.
func (s *Store) InsertCategorizationRule(ctx context.Context, rule models.CategorizationRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule)
	return nil
}

func (s *Store) ResolveAccount(ctx context.Context, userID int64, externalAccountID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.accounts[accountKey{userID, externalAccountID}]
	if !ok {
		return "", fmt.Errorf("account %s: %w", externalAccountID, db.ErrNotFound)
	}
	return id, nil
}

func (s *Store) GetAccessToken(ctx context.Context, userID int64, itemID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.items[userID][itemID]
	if !ok {
		return "", fmt.Errorf("plaid item %s: %w", itemID, db.ErrNotFound)
	}
	return token, nil
}

func (s *Store) QueryPlaidItems(ctx context.Context, userID int64) ([]models.PlaidItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := []models.PlaidItem{}
	for itemID, token := range s.items[userID] {
		items = append(items, models.PlaidItem{ID: itemID, UserID: userID, ItemID: itemID, AccessToken: token})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

func (s *Store) UserForItem(ctx context.Context, itemID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for userID, items := range s.items {
		if _, ok := items[itemID]; ok {
			return userID, nil
		}
	}
	return 0, fmt.Errorf("plaid item %s: %w", itemID, db.ErrNotFound)
}

var _ db.Ledger = (*Store)(nil)
