// Package aggregate turns money events into totals, per-category and per-day
// summaries. Transfer categories never contribute to any figure.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"finsight-server/src/budget"
	"finsight-server/src/daterange"
	"finsight-server/src/models"

	"github.com/shopspring/decimal"
)

const (
	topCategories = 3

	OtherCategoryID         = "other"
	OtherCategoryName       = "Other"
	UncategorizedCategoryID = ""
	UncategorizedName       = "Uncategorized"
)

var hundred = decimal.NewFromInt(100)

// Categories indexes a user's categories by id.
type Categories map[string]models.Category

func NewCategories(cats []models.Category) Categories {
	idx := make(Categories, len(cats))
	for _, c := range cats {
		idx[c.ID] = c
	}
	return idx
}

// Lookup returns the category of e, if it has a known one.
func (c Categories) Lookup(e models.MoneyEvent) (models.Category, bool) {
	if e.CategoryID == nil {
		return models.Category{}, false
	}
	cat, ok := c[*e.CategoryID]
	return cat, ok
}

func (c Categories) counts(e models.MoneyEvent) bool {
	cat, ok := c.Lookup(e)
	return !ok || !cat.IsTransfer()
}

// ExpenseBudget sums the monthly budgets of expense categories.
func (c Categories) ExpenseBudget() decimal.Decimal {
	total := decimal.Zero
	for _, cat := range c {
		if cat.Type == models.CategoryExpense {
			total = total.Add(cat.MonthlyBudget)
		}
	}
	return total
}

// Totals sums inflows into Income and outflows into Expenses (kept negative).
func Totals(events []models.MoneyEvent, cats Categories) models.Totals {
	income, expenses := decimal.Zero, decimal.Zero
	for _, e := range events {
		if !cats.counts(e) {
			continue
		}
		if e.Amount.IsPositive() {
			income = income.Add(e.Amount)
		} else {
			expenses = expenses.Add(e.Amount)
		}
	}
	return models.Totals{
		Income:    income,
		Expenses:  expenses,
		SignedNet: income.Add(expenses),
	}
}

// ByCategory groups activity per category, largest spend first. The top three
// are returned individually and the rest are folded into a single "Other" row,
// which is only present when something was folded. Expenses are magnitudes.
func ByCategory(events []models.MoneyEvent, cats Categories, w daterange.Window) []models.CategoryTotal {
	buckets := make(map[string]*models.CategoryTotal)
	for _, e := range events {
		if !cats.counts(e) {
			continue
		}
		key, name := UncategorizedCategoryID, UncategorizedName
		var monthly decimal.Decimal
		if cat, ok := cats.Lookup(e); ok {
			key, name, monthly = cat.ID, cat.Name, cat.MonthlyBudget
		}
		b, ok := buckets[key]
		if !ok {
			b = &models.CategoryTotal{
				CategoryID: key,
				Name:       name,
				Income:     decimal.Zero,
				Expenses:   decimal.Zero,
				Budget:     budget.WindowBudget(monthly, w),
			}
			buckets[key] = b
		}
		if e.Amount.IsPositive() {
			b.Income = b.Income.Add(e.Amount)
		} else {
			b.Expenses = b.Expenses.Add(e.Amount.Neg())
		}
	}

	rows := make([]models.CategoryTotal, 0, len(buckets))
	for _, b := range buckets {
		if b.Income.IsZero() && b.Expenses.IsZero() {
			continue
		}
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Expenses.Cmp(rows[j].Expenses); c != 0 {
			return c > 0
		}
		if c := rows[i].Income.Cmp(rows[j].Income); c != 0 {
			return c > 0
		}
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})

	if len(rows) <= topCategories {
		return rows
	}
	other := models.CategoryTotal{
		CategoryID: OtherCategoryID,
		Name:       OtherCategoryName,
		Income:     decimal.Zero,
		Expenses:   decimal.Zero,
		Budget:     decimal.Zero,
	}
	for _, r := range rows[topCategories:] {
		other.Income = other.Income.Add(r.Income)
		other.Expenses = other.Expenses.Add(r.Expenses)
		other.Budget = other.Budget.Add(r.Budget)
	}
	return append(rows[:topCategories:topCategories], other)
}

// ByDay returns one row per day of w, zero-filled, with expenses as a positive
// magnitude and the cumulative budget curve attached by position.
func ByDay(events []models.MoneyEvent, cats Categories, w daterange.Window, curve []decimal.Decimal) []models.DailyAggregate {
	dates := w.Dates()
	rows := make([]models.DailyAggregate, len(dates))
	index := make(map[int64]int, len(dates))
	for i, d := range dates {
		rows[i] = models.DailyAggregate{
			Date:                  d,
			Income:                decimal.Zero,
			ChartExpenseMagnitude: decimal.Zero,
			Budget:                decimal.Zero,
		}
		if i < len(curve) {
			rows[i].Budget = curve[i]
		}
		index[dayKey(d)] = i
	}

	for _, e := range events {
		if !cats.counts(e) {
			continue
		}
		i, ok := index[dayKey(e.Date)]
		if !ok {
			continue
		}
		if e.Amount.IsPositive() {
			rows[i].Income = rows[i].Income.Add(e.Amount)
		} else {
			rows[i].ChartExpenseMagnitude = rows[i].ChartExpenseMagnitude.Add(e.Amount.Neg())
		}
	}
	return rows
}

func dayKey(t time.Time) int64 {
	return daterange.Day(t).Unix()
}

// PercentageChange is (current - previous) / |previous| * 100. A zero previous
// value yields 100, 0 or -100 following the sign of current.
func PercentageChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		switch current.Sign() {
		case 1:
			return 100
		case -1:
			return -100
		default:
			return 0
		}
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred).InexactFloat64()
}

// Summarize compares the current window's totals with the preceding window's.
func Summarize(current, previous []models.MoneyEvent, cats Categories, w daterange.Window) models.PeriodSummary {
	cur := Totals(current, cats)
	prev := Totals(previous, cats)
	windowBudget := budget.WindowBudget(cats.ExpenseBudget(), w)
	return models.PeriodSummary{
		StartDate: w.Start,
		EndDate:   w.End,
		Current:   cur,
		Previous:  prev,
		Change: models.Change{
			Income:   PercentageChange(cur.Income, prev.Income),
			Expenses: PercentageChange(cur.Expenses, prev.Expenses),
			Spending: PercentageChange(cur.Expenses.Abs(), prev.Expenses.Abs()),
			Net:      PercentageChange(cur.SignedNet, prev.SignedNet),
		},
		Budget:          windowBudget,
		BudgetRemaining: windowBudget.Add(cur.Expenses),
	}
}
