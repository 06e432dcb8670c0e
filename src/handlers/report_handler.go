package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"finsight-server/src/daterange"
	"finsight-server/src/logger"
	"finsight-server/src/models"
	"finsight-server/src/report"
)

type windowedReport[T any] func(ctx context.Context, userID int64, accountID *string, w daterange.Window) (T, error)

func windowed[T any](svc *report.Service, name string, run windowedReport[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())

		q := r.URL.Query()
		win, err := svc.Window(q.Get("from"), q.Get("to"))
		if err != nil {
			var rangeErr *daterange.InvalidRangeError
			if errors.As(err, &rangeErr) {
				log.Warn().Err(err).Int64("user_id", userID).Msg("invalid report window")
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to resolve report window")
			http.Error(w, "failed to resolve report window", http.StatusInternalServerError)
			return
		}

		out, err := run(r.Context(), userID, accountParam(r), win)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Str("report", name).Msg("failed to build report")
			http.Error(w, "failed to build "+name, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetSummary(svc *report.Service) http.HandlerFunc {
	return windowed(svc, "summary", windowedReport[models.PeriodSummary](svc.Summary))
}

func GetDaily(svc *report.Service) http.HandlerFunc {
	return windowed(svc, "daily report", windowedReport[[]models.DailyAggregate](svc.Daily))
}

func GetCategoryBreakdown(svc *report.Service) http.HandlerFunc {
	return windowed(svc, "category breakdown", windowedReport[[]models.CategoryTotal](svc.Categories))
}

func GetForecast(svc *report.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())

		weeks := 0
		if raw := r.URL.Query().Get("weeks"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				log.Warn().Str("weeks", raw).Int64("user_id", userID).Msg("invalid forecast horizon")
				http.Error(w, "weeks must be a positive integer", http.StatusBadRequest)
				return
			}
			weeks = n
		}

		fc, err := svc.Forecast(r.Context(), userID, accountParam(r), weeks)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to build forecast")
			http.Error(w, "failed to build forecast", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, fc)
	}
}
