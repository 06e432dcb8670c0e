// Package report answers the dashboard's reporting and planning queries from
// ledger reads.
package report

import (
	"context"
	"fmt"
	"time"

	"finsight-server/src/aggregate"
	"finsight-server/src/budget"
	"finsight-server/src/daterange"
	"finsight-server/src/forecast"
	"finsight-server/src/models"
)

const (
	forecastWindow      = forecast.MaxWindow
	placeholderWeeks    = 4
	historyLookbackDays = aggregate.MaxWeeks * 7
)

type Store interface {
	QueryEvents(ctx context.Context, userID int64, accountID *string, start, end time.Time) ([]models.MoneyEvent, error)
	QueryCategories(ctx context.Context, userID int64) ([]models.Category, error)
}

type Service struct {
	store         Store
	defaultDays   int
	forecastWeeks int
	now           func() time.Time
}

func NewService(store Store, defaultDays, forecastWeeks int) *Service {
	return &Service{
		store:         store,
		defaultDays:   defaultDays,
		forecastWeeks: forecastWeeks,
		now:           time.Now,
	}
}

// WithClock replaces the time source used to resolve default windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Window resolves request bounds against the configured default span.
func (s *Service) Window(from, to string) (daterange.Window, error) {
	return daterange.Parse(from, to, s.defaultDays, s.now())
}

func (s *Service) load(ctx context.Context, userID int64, accountID *string, w daterange.Window) ([]models.MoneyEvent, aggregate.Categories, error) {
	events, err := s.store.QueryEvents(ctx, userID, accountID, w.Start, w.End)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	cats, err := s.store.QueryCategories(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return events, aggregate.NewCategories(cats), nil
}

func (s *Service) Summary(ctx context.Context, userID int64, accountID *string, w daterange.Window) (models.PeriodSummary, error) {
	current, cats, err := s.load(ctx, userID, accountID, w)
	if err != nil {
		return models.PeriodSummary{}, err
	}
	prev := w.Previous()
	previous, err := s.store.QueryEvents(ctx, userID, accountID, prev.Start, prev.End)
	if err != nil {
		return models.PeriodSummary{}, fmt.Errorf("failed to fetch previous period transactions: %w", err)
	}
	return aggregate.Summarize(current, previous, cats, w), nil
}

func (s *Service) Daily(ctx context.Context, userID int64, accountID *string, w daterange.Window) ([]models.DailyAggregate, error) {
	events, cats, err := s.load(ctx, userID, accountID, w)
	if err != nil {
		return nil, err
	}
	curve := budget.Curve(cats.ExpenseBudget(), w)
	return aggregate.ByDay(events, cats, w, curve), nil
}

func (s *Service) Categories(ctx context.Context, userID int64, accountID *string, w daterange.Window) ([]models.CategoryTotal, error) {
	events, cats, err := s.load(ctx, userID, accountID, w)
	if err != nil {
		return nil, err
	}
	return aggregate.ByCategory(events, cats, w), nil
}

// Forecast projects weekly net cash flow from up to a year of history. With
// no history a flat zero baseline is projected instead.
func (s *Service) Forecast(ctx context.Context, userID int64, accountID *string, weeks int) (models.Forecast, error) {
	if weeks <= 0 {
		weeks = s.forecastWeeks
	}
	end := daterange.Day(s.now())
	w, err := daterange.New(end.AddDate(0, 0, -(historyLookbackDays-1)), end)
	if err != nil {
		return models.Forecast{}, err
	}
	events, cats, err := s.load(ctx, userID, accountID, w)
	if err != nil {
		return models.Forecast{}, err
	}

	history := aggregate.Floats(aggregate.WeeklyNet(events, cats))
	synthetic := false
	projected, err := forecast.Project(history, weeks, forecastWindow)
	if forecast.IsInsufficientHistory(err) {
		history = forecast.Baseline(placeholderWeeks, 0)
		synthetic = true
		projected, err = forecast.Project(history, weeks, forecastWindow)
	}
	if err != nil {
		return models.Forecast{}, fmt.Errorf("failed to project cash flow: %w", err)
	}

	horizon, window := forecast.Clamp(len(history), weeks, forecastWindow)
	return models.Forecast{
		History:   history,
		Projected: projected,
		Window:    window,
		Horizon:   horizon,
		Synthetic: synthetic,
	}, nil
}
