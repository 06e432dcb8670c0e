package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecurringStream struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"user_id"`
	StreamID      string          `json:"stream_id"`
	Name          string          `json:"name"`
	PayeeName     string          `json:"payee_name"`
	AccountID     string          `json:"account_id"`
	CategoryID    *string         `json:"category_id"`
	Frequency     string          `json:"frequency"`
	AverageAmount decimal.Decimal `json:"average_amount"`
	LastAmount    decimal.Decimal `json:"last_amount"`
	LastDate      time.Time       `json:"last_date"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}
