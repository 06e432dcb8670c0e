package handlers

import (
	"errors"
	"net/http"

	"finsight-server/src/db"
	"finsight-server/src/logger"
	"finsight-server/src/recurring"

	"github.com/go-chi/chi/v5"
)

func GetRecurringStreams(ledger db.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		streams, err := ledger.QueryRecurringStreams(r.Context(), userID)
		if err != nil {
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to get recurring streams")
			http.Error(w, "failed to get recurring streams", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, streams)
	}
}

// GetStreamTransactions lists the ledger events that belong to a recurring stream.
func GetStreamTransactions(ledger db.Ledger, finder *recurring.SiblingFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())
		streamID := chi.URLParam(r, "stream_id")

		streams, err := ledger.QueryRecurringStreams(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to get recurring streams")
			http.Error(w, "failed to get recurring streams", http.StatusInternalServerError)
			return
		}
		for _, stream := range streams {
			if stream.StreamID != streamID {
				continue
			}
			siblings, err := finder.FindSiblings(r.Context(), stream)
			if err != nil {
				log.Error().Err(err).Int64("user_id", userID).Str("stream_id", streamID).Msg("failed to find stream transactions")
				http.Error(w, "failed to find stream transactions", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, siblings)
			return
		}
		log.Warn().Int64("user_id", userID).Str("stream_id", streamID).Msg("recurring stream not found")
		http.Error(w, "recurring stream not found", http.StatusNotFound)
	}
}

func SyncRecurring(items *recurring.ItemSync) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUser(w, r)
		if !ok {
			return
		}
		log := logger.FromContext(r.Context())
		itemID := chi.URLParam(r, "item_id")

		result, err := items.Run(r.Context(), userID, itemID)
		if errors.Is(err, db.ErrNotFound) {
			log.Warn().Err(err).Int64("user_id", userID).Str("item_id", itemID).Msg("plaid item not found")
			http.Error(w, "plaid item not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Str("item_id", itemID).Msg("failed to sync recurring transactions")
			http.Error(w, "failed to sync recurring transactions", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
