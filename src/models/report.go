package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals keeps expenses signed (negative) so that SignedNet = Income + Expenses.
type Totals struct {
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	SignedNet decimal.Decimal `json:"net"`
}

// Change holds percentage changes against the previous period. Expenses
// compares the signed totals, so more spending reads as a negative change.
// Spending compares magnitudes: more spending reads as a positive change.
type Change struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Spending float64 `json:"spending"`
	Net      float64 `json:"net"`
}

type PeriodSummary struct {
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Current         Totals          `json:"current"`
	Previous        Totals          `json:"previous"`
	Change          Change          `json:"change"`
	Budget          decimal.Decimal `json:"budget"`
	BudgetRemaining decimal.Decimal `json:"budget_remaining"`
}

// DailyAggregate reports expenses as a positive magnitude for charting.
type DailyAggregate struct {
	Date                  time.Time       `json:"date"`
	Income                decimal.Decimal `json:"income"`
	ChartExpenseMagnitude decimal.Decimal `json:"expenses"`
	Budget                decimal.Decimal `json:"budget"`
}

type CategoryTotal struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	Budget     decimal.Decimal `json:"budget"`
}

type Forecast struct {
	History   []float64 `json:"history"`
	Projected []float64 `json:"projected"`
	Window    int       `json:"window"`
	Horizon   int       `json:"horizon"`
	Synthetic bool      `json:"synthetic"`
}
