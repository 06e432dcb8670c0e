// Package budget converts monthly budget figures into amounts for arbitrary
// reporting windows.
package budget

import (
	"finsight-server/src/daterange"

	"github.com/shopspring/decimal"
)

// DaysPerMonth is the average month length used for every daily rate, so that
// months of different lengths prorate consistently.
var DaysPerMonth = decimal.RequireFromString("30.44")

type Proration struct {
	DailyRate    decimal.Decimal   `json:"daily_rate"`
	WindowBudget decimal.Decimal   `json:"window_budget"`
	Curve        []decimal.Decimal `json:"curve"`
}

// DailyRate is monthly / DaysPerMonth. Negative budgets count as zero.
func DailyRate(monthly decimal.Decimal) decimal.Decimal {
	if monthly.IsNegative() {
		return decimal.Zero
	}
	return monthly.Div(DaysPerMonth)
}

// WindowBudget returns the headline budget for w. A window covering exactly
// one calendar month returns monthly unchanged.
func WindowBudget(monthly decimal.Decimal, w daterange.Window) decimal.Decimal {
	if monthly.IsNegative() {
		return decimal.Zero
	}
	if w.IsFullMonth() {
		return monthly
	}
	return DailyRate(monthly).Mul(decimal.NewFromInt(int64(w.Days())))
}

// Curve is the cumulative linear budget for each day of w. It never applies
// the full-month special case, so its last point may differ from WindowBudget.
func Curve(monthly decimal.Decimal, w daterange.Window) []decimal.Decimal {
	rate := DailyRate(monthly)
	n := w.Days()
	curve := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		curve[i] = rate.Mul(decimal.NewFromInt(int64(i + 1)))
	}
	return curve
}

func Prorate(monthly decimal.Decimal, w daterange.Window) Proration {
	return Proration{
		DailyRate:    DailyRate(monthly),
		WindowBudget: WindowBudget(monthly, w),
		Curve:        Curve(monthly, w),
	}
}
