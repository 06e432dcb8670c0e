package models

import "time"

type MatchType string

const (
	MatchProviderPrimaryCategory MatchType = "provider_primary_category"
	MatchTransactionName         MatchType = "transaction_name"
)

type CategorizationRule struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	MatchType  MatchType `json:"match_type"`
	MatchValue string    `json:"match_value"`
	CategoryID string    `json:"category_id"`
	Priority   int       `json:"priority"`
	CreatedAt  time.Time `json:"created_at"`
}
