package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"finsight-server/src/daterange"
	"finsight-server/src/db"
	"finsight-server/src/logger"
	"finsight-server/src/rules"

	"github.com/go-chi/chi/v5"
)

func GetCategorizationRules(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		set, err := engine.RuleSet(r.Context(), userID)
		if err != nil {
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to get categorization rules")
			http.Error(w, "failed to get categorization rules", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, set.Rules())
	}
}

func ResolveCategory(engine *rules.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())

		var req struct {
			PrimaryCategory string `json:"primary_category"`
			Name            string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("failed to decode resolve request body")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.PrimaryCategory == "" && req.Name == "" {
			http.Error(w, "primary_category or name is required", http.StatusBadRequest)
			return
		}

		categoryID, err := engine.Resolve(r.Context(), userID, req.PrimaryCategory, req.Name)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to resolve category")
			http.Error(w, "failed to resolve category", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]*string{"category_id": categoryID})
	}
}

// WindowResolver turns request bounds into a reporting window, filling in
// missing bounds from its own clock.
type WindowResolver interface {
	Window(from, to string) (daterange.Window, error)
}

func ApplyCategorizationRules(applier *rules.Applier, windows WindowResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())

		q := r.URL.Query()
		win, err := windows.Window(q.Get("from"), q.Get("to"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := applier.ApplyToEvents(r.Context(), userID, win.Start, win.End)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Str("window", win.String()).Msg("failed to apply categorization rules")
			http.Error(w, "failed to apply categorization rules", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func CategorizeTransaction(applier *rules.Applier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())
		transactionID := chi.URLParam(r, "transaction_id")

		adj, err := applier.Categorize(r.Context(), userID, transactionID)
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Str("transaction_id", transactionID).Msg("failed to categorize transaction")
			http.Error(w, "failed to categorize transaction", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]*rules.Adjustment{"adjustment": adj})
	}
}
