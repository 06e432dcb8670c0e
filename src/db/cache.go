package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finsight-server/src/models"

	"github.com/dgraph-io/ristretto"
)

const cacheTTL = 10 * time.Minute

// CachedLedger caches category and rule reads per user. Cache keys are also
// tracked per user so one user's entries can be dropped together.
//
// Every write that invalidates a user's entries bumps that user's generation.
// A read only fills the cache when the generation it started under is still
// current, so a slow read never re-caches data an insert already replaced.
type CachedLedger struct {
	Ledger
	cache *ristretto.Cache

	mu   sync.Mutex
	keys map[int64]map[string]struct{}
	gen  map[int64]uint64
}

func NewCachedLedger(inner Ledger) (*CachedLedger, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &CachedLedger{
		Ledger: inner,
		cache:  cache,
		keys:   make(map[int64]map[string]struct{}),
		gen:    make(map[int64]uint64),
	}, nil
}

func categoriesKey(userID int64) string { return fmt.Sprintf("categories:%d", userID) }
func rulesKey(userID int64) string      { return fmt.Sprintf("rules:%d", userID) }

func (c *CachedLedger) generation(userID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[userID]
}

// set stores value unless userID's entries were invalidated after gen was read.
func (c *CachedLedger) set(userID int64, gen uint64, key string, value interface{}) {
	c.mu.Lock()
	if c.gen[userID] != gen {
		c.mu.Unlock()
		return
	}
	if c.keys[userID] == nil {
		c.keys[userID] = make(map[string]struct{})
	}
	c.keys[userID][key] = struct{}{}
	c.cache.SetWithTTL(key, value, 1, cacheTTL)
	c.mu.Unlock()
	c.cache.Wait()
}

func (c *CachedLedger) del(userID int64, key string) {
	c.mu.Lock()
	c.gen[userID]++
	delete(c.keys[userID], key)
	c.cache.Del(key)
	c.mu.Unlock()
}

// ClearUser drops every cached entry for userID.
func (c *CachedLedger) ClearUser(userID int64) {
	c.mu.Lock()
	c.gen[userID]++
	for key := range c.keys[userID] {
		c.cache.Del(key)
	}
	delete(c.keys, userID)
	c.mu.Unlock()
}

func (c *CachedLedger) QueryCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	key := categoriesKey(userID)
	if v, ok := c.cache.Get(key); ok {
		if cats, ok := v.([]models.Category); ok {
			return cats, nil
		}
	}
	gen := c.generation(userID)
	cats, err := c.Ledger.QueryCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.set(userID, gen, key, cats)
	return cats, nil
}

func (c *CachedLedger) QueryRules(ctx context.Context, userID int64) ([]models.CategorizationRule, error) {
	key := rulesKey(userID)
	if v, ok := c.cache.Get(key); ok {
		if rules, ok := v.([]models.CategorizationRule); ok {
			return rules, nil
		}
	}
	gen := c.generation(userID)
	rules, err := c.Ledger.QueryRules(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.set(userID, gen, key, rules)
	return rules, nil
}

func (c *CachedLedger) InsertCategorizationRule(ctx context.Context, rule models.CategorizationRule) error {
	err := c.Ledger.InsertCategorizationRule(ctx, rule)
	c.del(rule.UserID, rulesKey(rule.UserID))
	return err
}

func (c *CachedLedger) Close() {
	c.cache.Close()
}
