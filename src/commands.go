package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsight-server/src/api"
	"finsight-server/src/config"
	"finsight-server/src/db"
	sqldb "finsight-server/src/db/sql"
	"finsight-server/src/logger"
	"finsight-server/src/plaid"
	"finsight-server/src/recurring"
	"finsight-server/src/report"
	"finsight-server/src/rules"
	"finsight-server/src/util"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const fuzzyMaxDistance = 2

// app holds everything built from configuration for one process.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	ledger   *db.CachedLedger
	close    func()
	reports  *report.Service
	engine   *rules.Engine
	applier  *rules.Applier
	siblings *recurring.SiblingFinder
	items    *recurring.ItemSync
	webhooks *util.WebhookVerifier
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	log := logger.New()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("DB connection failed: %w", err)
	}
	store := sqldb.New(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	ledger, err := db.NewCachedLedger(store)
	if err != nil {
		pool.Close()
		return nil, err
	}

	plaidClient, err := plaid.NewPlaidClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
	if err != nil {
		ledger.Close()
		pool.Close()
		return nil, err
	}

	var matcher recurring.Matcher = recurring.ExactMatcher{}
	if cfg.SiblingMatch == "fuzzy" {
		matcher = recurring.FuzzyMatcher{MaxDistance: fuzzyMaxDistance}
	}

	engine := rules.NewEngine(ledger)
	sync := recurring.NewSynchronizer(ledger, engine, cfg.SyncConcurrency)
	return &app{
		cfg:    cfg,
		log:    log,
		ledger: ledger,
		close: func() {
			ledger.Close()
			pool.Close()
		},
		reports:  report.NewService(ledger, cfg.DefaultWindowDays, cfg.ForecastWeeks),
		engine:   engine,
		applier:  rules.NewApplier(engine, ledger),
		siblings: recurring.NewSiblingFinder(ledger, matcher).WithLookback(time.Duration(cfg.SiblingLookback) * 24 * time.Hour),
		items:    recurring.NewItemSync(ledger, plaid.NewRecurringProvider(plaidClient), sync),
		webhooks: util.NewWebhookVerifier(plaidClient),
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "finsight",
		Short:         "Financial aggregation and auto-categorization server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newForecastCmd(), newSyncRecurringCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			router := api.NewRouter(api.Deps{
				Ledger:   a.ledger,
				Reports:  a.reports,
				Rules:    a.engine,
				Applier:  a.applier,
				Siblings: a.siblings,
				Items:    a.items,
				Webhooks: a.webhooks,
			}, api.Options{
				JWTSecret:      a.cfg.JWTSecret,
				AllowedOrigins: a.cfg.AllowedOrigins,
				DemoMode:       a.cfg.DemoMode,
				Logger:         a.log,
			})

			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("port", a.cfg.Port).Bool("demo_mode", a.cfg.DemoMode).Msg("API server running")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newForecastCmd() *cobra.Command {
	var (
		userID    int64
		weeks     int
		accountID string
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print a weekly net cash flow projection for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			var account *string
			if accountID != "" {
				account = &accountID
			}
			fc, err := a.reports.Forecast(cmd.Context(), userID, account, weeks)
			if err != nil {
				return err
			}
			return printJSON(cmd, fc)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().IntVar(&weeks, "weeks", 0, "weeks to project (defaults to FORECAST_WEEKS)")
	cmd.Flags().StringVar(&accountID, "account", "", "restrict to one account")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newSyncRecurringCmd() *cobra.Command {
	var (
		userID int64
		itemID string
	)
	cmd := &cobra.Command{
		Use:   "sync-recurring",
		Short: "Pull recurring streams for linked items and store new ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			ctx := logger.WithContext(cmd.Context(), a.log)
			itemIDs := []string{itemID}
			if itemID == "" {
				items, err := a.ledger.QueryPlaidItems(ctx, userID)
				if err != nil {
					return err
				}
				itemIDs = itemIDs[:0]
				for _, item := range items {
					itemIDs = append(itemIDs, item.ItemID)
				}
			}

			results := make(map[string]recurring.SyncResult, len(itemIDs))
			for _, id := range itemIDs {
				result, err := a.items.Run(ctx, userID, id)
				if err != nil {
					return fmt.Errorf("item %s: %w", id, err)
				}
				results[id] = result
			}
			return printJSON(cmd, results)
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().StringVar(&itemID, "item", "", "plaid item id (defaults to every linked item)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
