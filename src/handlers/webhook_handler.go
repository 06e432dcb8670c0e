package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"finsight-server/src/db"
	"finsight-server/src/logger"
	"finsight-server/src/recurring"
)

const maxWebhookBody = 1 << 20

type WebhookVerifier interface {
	Verify(ctx context.Context, body []byte, header http.Header) error
}

type ItemOwners interface {
	UserForItem(ctx context.Context, itemID string) (int64, error)
}

type webhookPayload struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
}

// PlaidWebhook syncs recurring streams when Plaid reports they changed. Other
// webhooks are acknowledged and ignored. A failed sync answers 500 so Plaid
// retries; syncing is idempotent.
func PlaidWebhook(verifier WebhookVerifier, owners ItemOwners, items *recurring.ItemSync) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := verifier.Verify(r.Context(), body, r.Header); err != nil {
			log.Warn().Err(err).Msg("rejected plaid webhook")
			http.Error(w, "invalid webhook signature", http.StatusUnauthorized)
			return
		}

		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			log.Warn().Err(err).Msg("failed to decode plaid webhook")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		log = log.With().Str("webhook_type", payload.WebhookType).Str("webhook_code", payload.WebhookCode).
			Str("item_id", payload.ItemID).Logger()

		if payload.WebhookCode != "RECURRING_TRANSACTIONS_UPDATE" {
			log.Debug().Msg("ignored plaid webhook")
			w.WriteHeader(http.StatusOK)
			return
		}

		userID, err := owners.UserForItem(r.Context(), payload.ItemID)
		if errors.Is(err, db.ErrNotFound) {
			log.Warn().Msg("plaid webhook for unknown item")
			w.WriteHeader(http.StatusOK)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to look up plaid item owner")
			http.Error(w, "failed to process webhook", http.StatusInternalServerError)
			return
		}

		result, err := items.Run(logger.WithContext(r.Context(), log), userID, payload.ItemID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to sync recurring transactions from webhook")
			http.Error(w, "failed to process webhook", http.StatusInternalServerError)
			return
		}
		log.Info().Int64("user_id", userID).Int("created", len(result.Created)).Msg("processed recurring transactions webhook")
		w.WriteHeader(http.StatusOK)
	}
}
