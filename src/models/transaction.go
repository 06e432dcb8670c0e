package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyEvent is a single dated, signed money movement. Positive amounts are
// inflows, negative amounts are outflows.
type MoneyEvent struct {
	ID              string          `json:"id"`
	UserID          int64           `json:"user_id"`
	AccountID       string          `json:"account_id"`
	CategoryID      *string         `json:"category_id"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	PayeeName       string          `json:"payee_name"`
	PrimaryCategory string          `json:"primary_category"`
}
