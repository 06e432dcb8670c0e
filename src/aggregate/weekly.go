package aggregate

import (
	"sort"

	"finsight-server/src/daterange"
	"finsight-server/src/models"

	"github.com/shopspring/decimal"
)

// MaxWeeks caps the weekly history handed to the forecaster.
const MaxWeeks = 52

// WeeklyNet buckets net amounts into contiguous seven-day periods starting at
// the earliest event, not at calendar week boundaries. Empty weeks between
// events are zero. Only the newest MaxWeeks buckets are kept.
func WeeklyNet(events []models.MoneyEvent, cats Categories) []decimal.Decimal {
	counted := make([]models.MoneyEvent, 0, len(events))
	for _, e := range events {
		if cats.counts(e) {
			counted = append(counted, e)
		}
	}
	if len(counted) == 0 {
		return nil
	}
	sort.Slice(counted, func(i, j int) bool { return counted[i].Date.Before(counted[j].Date) })

	first := daterange.Day(counted[0].Date)
	last := daterange.Day(counted[len(counted)-1].Date)
	n := int(last.Sub(first).Hours()/24)/7 + 1

	weeks := make([]decimal.Decimal, n)
	for i := range weeks {
		weeks[i] = decimal.Zero
	}
	for _, e := range counted {
		i := int(daterange.Day(e.Date).Sub(first).Hours()/24) / 7
		weeks[i] = weeks[i].Add(e.Amount)
	}
	if len(weeks) > MaxWeeks {
		weeks = weeks[len(weeks)-MaxWeeks:]
	}
	return weeks
}

// Floats converts amounts for numeric consumers such as the forecaster.
func Floats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.InexactFloat64()
	}
	return out
}
