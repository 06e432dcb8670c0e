package api

import (
	"net/http"

	"finsight-server/src/db"
	"finsight-server/src/handlers"
	"finsight-server/src/middleware"
	"finsight-server/src/recurring"
	"finsight-server/src/report"
	"finsight-server/src/rules"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Ledger   db.Ledger
	Reports  *report.Service
	Rules    *rules.Engine
	Applier  *rules.Applier
	Siblings *recurring.SiblingFinder
	Items    *recurring.ItemSync
	Webhooks handlers.WebhookVerifier
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	DemoMode       bool
	Logger         zerolog.Logger
}

func NewRouter(d Deps, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.CORSMiddleware(opts.AllowedOrigins))
	r.Use(middleware.DemoModeMiddleware(opts.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/plaid/webhook", handlers.PlaidWebhook(d.Webhooks, d.Ledger, d.Items))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(opts.JWTSecret)).Group(func(r chi.Router) {
			// Reports
			r.Get("/reports/summary", handlers.GetSummary(d.Reports))
			r.Get("/reports/daily", handlers.GetDaily(d.Reports))
			r.Get("/reports/categories", handlers.GetCategoryBreakdown(d.Reports))
			r.Get("/reports/forecast", handlers.GetForecast(d.Reports))

			// Recurring streams
			r.Get("/recurring", handlers.GetRecurringStreams(d.Ledger))
			r.Get("/recurring/{stream_id}/transactions", handlers.GetStreamTransactions(d.Ledger, d.Siblings))
			r.Post("/recurring/sync/{item_id}", handlers.SyncRecurring(d.Items))

			// Categorization
			r.Get("/categorization-rules", handlers.GetCategorizationRules(d.Rules))
			r.Post("/categorization-rules/resolve", handlers.ResolveCategory(d.Rules))
			r.Post("/categorization-rules/apply", handlers.ApplyCategorizationRules(d.Applier, d.Reports))
			r.Post("/transactions/{transaction_id}/categorize", handlers.CategorizeTransaction(d.Applier))
		})
	})

	return r
}
