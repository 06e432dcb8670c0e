package models

import "github.com/shopspring/decimal"

type CategoryType string

const (
	CategoryIncome   CategoryType = "income"
	CategoryExpense  CategoryType = "expense"
	CategoryTransfer CategoryType = "transfer"
)

type Category struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	Type          CategoryType    `json:"type"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
}

// IsTransfer reports whether the category is excluded from income, expense
// and budget figures.
func (c Category) IsTransfer() bool {
	return c.Type == CategoryTransfer
}
