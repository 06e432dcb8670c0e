package rules

import (
	"sort"

	"finsight-server/src/models"
)

// Key identifies the candidates competing for one signal.
type Key struct {
	Type  models.MatchType
	Value string
}

func NameKey(name string) Key {
	return Key{Type: models.MatchTransactionName, Value: Sanitize(name)}
}

func PrimaryKey(primary string) Key {
	return Key{Type: models.MatchProviderPrimaryCategory, Value: primary}
}

// RuleSet groups append-only rules by key. Duplicate rules for a key are
// expected and resolved by Effective.
type RuleSet struct {
	byKey map[Key][]models.CategorizationRule
}

func NewRuleSet(rules []models.CategorizationRule) *RuleSet {
	s := &RuleSet{byKey: make(map[Key][]models.CategorizationRule)}
	for _, r := range rules {
		s.Add(r)
	}
	return s
}

func (s *RuleSet) Add(r models.CategorizationRule) {
	k := Key{Type: r.MatchType, Value: r.MatchValue}
	s.byKey[k] = append(s.byKey[k], r)
}

// Lookup returns the effective rule for k.
func (s *RuleSet) Lookup(k Key) (models.CategorizationRule, bool) {
	return Effective(s.byKey[k])
}

func (s *RuleSet) Has(k Key) bool {
	return len(s.byKey[k]) > 0
}

// Resolve applies a name rule if one exists, otherwise a provider category
// rule. Name rules always win over category rules.
func (s *RuleSet) Resolve(primary, name string) (string, bool) {
	if k := NameKey(name); k.Value != "" {
		if r, ok := s.Lookup(k); ok {
			return r.CategoryID, true
		}
	}
	if primary != "" {
		if r, ok := s.Lookup(PrimaryKey(primary)); ok {
			return r.CategoryID, true
		}
	}
	return "", false
}

// Rules lists the effective rule of every key, ordered by type then value.
func (s *RuleSet) Rules() []models.CategorizationRule {
	keys := make([]Key, 0, len(s.byKey))
	for k := range s.byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Value < keys[j].Value
	})
	out := make([]models.CategorizationRule, 0, len(keys))
	for _, k := range keys {
		r, _ := s.Lookup(k)
		out = append(out, r)
	}
	return out
}

// Effective picks the highest priority candidate, then the newest, then the
// greatest id so the result never depends on input order.
func Effective(candidates []models.CategorizationRule) (models.CategorizationRule, bool) {
	if len(candidates) == 0 {
		return models.CategorizationRule{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if outranks(c, best) {
			best = c
		}
	}
	return best, true
}

func outranks(a, b models.CategorizationRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
