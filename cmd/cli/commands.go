package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/infrastructure/config"
	"github.com/iho/fxledger/internal/infrastructure/logger"
	"github.com/iho/fxledger/internal/infrastructure/postgres"
)

const apiPrefix = "/api/v1"

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&migrationsPath, "migrations-path", "", "Migrations directory (defaults to the embedded set)")

	run := func(down bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if databaseURL != "" {
				cfg.DatabaseURL = databaseURL
			}
			if migrationsPath != "" {
				cfg.MigrationsPath = migrationsPath
			}

			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: cmd.ErrOrStderr()})
			if down {
				return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
			}
			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(false)},
		&cobra.Command{Use: "down", Short: "Roll back the last migration", Args: cobra.NoArgs, RunE: run(true)},
	)
	return cmd
}

func accountCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	addCmd := &cobra.Command{
		Use:   "add <full-name> <currency>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := opts.client().do(cmd.Context(), http.MethodPost, apiPrefix+"/accounts", nil,
				dto.CreateAccountRequest{FullName: args[0], Currency: args[1]}, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			body, err := opts.client().do(cmd.Context(), http.MethodGet, apiPrefix+"/accounts", query, nil, nil)
			if err != nil {
				return err
			}

			var resp dto.ListAccountsResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
			printAccounts(cmd.OutOrStdout(), resp.Accounts)
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of accounts")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Number of accounts to skip")

	cmd.AddCommand(addCmd, listCmd)
	return cmd
}

func printAccounts(w io.Writer, accounts []*dto.AccountResponse) {
	fmt.Fprintf(w, "%-26s  %-40s  %s\n", "ID", "NAME", "CURRENCY")
	for _, a := range accounts {
		fmt.Fprintf(w, "%-26s  %-40s  %s\n", a.ID, truncate(a.FullName, 40), a.Currency)
	}
}

func currencyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "currency",
		Short: "Currency directory operations",
	}

	var rate string
	var makeBase bool
	setCmd := &cobra.Command{
		Use:   "set <code>",
		Short: "Create or update a currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.SetCurrencyRequest{MakeBase: makeBase}
			if rate != "" {
				d, err := decimal.NewFromString(rate)
				if err != nil {
					return fmt.Errorf("invalid --rate %q: %w", rate, err)
				}
				req.RateToBase = &d
			}

			body, err := opts.client().do(cmd.Context(), http.MethodPut, apiPrefix+"/currencies/"+url.PathEscape(args[0]), nil, req, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	setCmd.Flags().StringVar(&rate, "rate", "", "Rate to the base currency")
	setCmd.Flags().BoolVar(&makeBase, "base", false, "Make this the base currency")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := opts.client().do(cmd.Context(), http.MethodGet, apiPrefix+"/currencies", nil, nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.AddCommand(setCmd, listCmd)
	return cmd
}

func txCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Journal transaction operations",
	}

	var idempotencyKey string
	postCmd := &cobra.Command{
		Use:   "post [file|-]",
		Short: "Post a transaction from a JSON file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readTransaction(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			header := http.Header{}
			if idempotencyKey != "" {
				header.Set(dto.IdempotencyKeyHeader, idempotencyKey)
			}

			body, err := opts.client().do(cmd.Context(), http.MethodPost, apiPrefix+"/transactions", nil, req, header)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	postCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := opts.client().do(cmd.Context(), http.MethodGet, apiPrefix+"/transactions/"+url.PathEscape(args[0]), nil, nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}

	cmd.AddCommand(postCmd, getCmd)
	return cmd
}

// readTransaction reads the request from the named file, or from stdin when
// no file or "-" is given.
func readTransaction(stdin io.Reader, args []string) (*dto.PostTransactionRequest, error) {
	src := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}

	var req dto.PostTransactionRequest
	if err := json.NewDecoder(src).Decode(&req); err != nil {
		return nil, fmt.Errorf("decoding transaction: %w", err)
	}
	return &req, nil
}

func balanceCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance reports",
	}

	var (
		convert  bool
		base     string
		from, to string
		meta     []string
	)
	tradingCmd := &cobra.Command{
		Use:   "trading",
		Short: "Per-currency trading balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			for name, value := range map[string]string{"from": from, "to": to} {
				if value == "" {
					continue
				}
				if _, err := time.Parse(time.RFC3339, value); err != nil {
					return fmt.Errorf("invalid --%s %q: expected RFC3339", name, value)
				}
				query.Set(name, value)
			}
			for _, m := range meta {
				if !strings.Contains(m, ":") {
					return fmt.Errorf("invalid --meta %q: expected key:value", m)
				}
				query.Add("meta", m)
			}
			if convert {
				query.Set("convert", "true")
				if base != "" {
					query.Set("base", base)
				}
			}

			body, err := opts.client().do(cmd.Context(), http.MethodGet, apiPrefix+"/balances/trading", query, nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	tradingCmd.Flags().BoolVar(&convert, "convert", false, "Convert each currency into the base currency")
	tradingCmd.Flags().StringVar(&base, "base", "", "Base currency (defaults to the directory base)")
	tradingCmd.Flags().StringVar(&from, "from", "", "Only transactions at or after this RFC3339 time")
	tradingCmd.Flags().StringVar(&to, "to", "", "Only transactions before this RFC3339 time")
	tradingCmd.Flags().StringArrayVar(&meta, "meta", nil, "Metadata filter key:value (repeatable)")

	cmd.AddCommand(tradingCmd)
	return cmd
}

func fxCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fx",
		Short: "FX rate audit trail",
	}

	var currency string
	var limit, offset int
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "List exchange-rate events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if currency != "" {
				query.Set("currency", currency)
			}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			body, err := opts.client().do(cmd.Context(), http.MethodGet, apiPrefix+"/fx-audit/events", query, nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	eventsCmd.Flags().StringVar(&currency, "currency", "", "Only events for this currency")
	eventsCmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of events")
	eventsCmd.Flags().IntVar(&offset, "offset", 0, "Number of events to skip")

	cmd.AddCommand(eventsCmd, ttlCmd(opts))
	return cmd
}

func ttlCmd(opts *options) *cobra.Command {
	var (
		retentionDays int
		batchSize     int
		mode          string
		limit         int
		execute       bool
	)

	cmd := &cobra.Command{
		Use:   "ttl",
		Short: "Archive or delete old exchange-rate events (dry run unless --execute)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.TTLRequest{Mode: mode, Limit: limit, DryRun: !execute}
			// Unset flags fall back to the server's configured defaults.
			if cmd.Flags().Changed("retention-days") {
				req.RetentionDays = &retentionDays
			}
			if cmd.Flags().Changed("batch-size") {
				req.BatchSize = &batchSize
			}

			body, err := opts.client().do(cmd.Context(), http.MethodPost, apiPrefix+"/fx-audit/ttl/run", nil, req, nil)
			if err != nil {
				// A failed batch still reports the batches committed before it.
				var partial dto.TTLRunResponse
				if json.Unmarshal(body, &partial) == nil && partial.Result.BatchesApplied > 0 {
					_ = printJSON(cmd.OutOrStdout(), body)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "Keep events newer than this many days")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Events per database transaction")
	cmd.Flags().StringVar(&mode, "mode", "", "archive, delete or none")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of events to process (0 = all)")
	cmd.Flags().BoolVar(&execute, "execute", false, "Apply the plan instead of a dry run")

	return cmd
}
