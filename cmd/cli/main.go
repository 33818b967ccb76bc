package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/finledger/internal/infrastructure/config"
	"github.com/iho/finledger/internal/infrastructure/logger"
	"github.com/iho/finledger/internal/infrastructure/postgres"
)

// migrate functions are variables so tests can replace them.
var (
	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// apiClient calls the ledger HTTP API.
type apiClient struct {
	baseURL        string
	token          string
	idempotencyKey string
	timeout        time.Duration
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, strings.TrimSpace(e.Body))
}

func (c *apiClient) do(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.baseURL, "/")+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.idempotencyKey != "" && method == http.MethodPost {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apiError{Status: resp.StatusCode, Body: string(raw)}
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func newRootCmd() *cobra.Command {
	client := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "finledger-cli",
		Short:         "FinLedger CLI tool",
		Long:          `A command line interface for the FinLedger statement API.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&client.baseURL, "url", "http://localhost:8080", "Base URL of the FinLedger API")
	rootCmd.PersistentFlags().StringVar(&client.token, "token", os.Getenv("FINLEDGER_TOKEN"), "Session token (defaults to $FINLEDGER_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&client.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		signupCmd(client),
		loginCmd(client),
		statementCreateCmd(client, "deposit"),
		statementCreateCmd(client, "withdraw"),
		transferCmd(client),
		balanceCmd(client),
		statementCmd(client),
		ledgerCmd(client),
		migrateCmd(),
	)

	return rootCmd
}

func signupCmd(client *apiClient) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.do(cmd.Context(), http.MethodPost, "/api/v1/users", map[string]string{
				"name":     name,
				"email":    email,
				"password": password,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func loginCmd(client *apiClient) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create a session and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.do(cmd.Context(), http.MethodPost, "/api/v1/sessions", map[string]string{
				"email":    email,
				"password": password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result["token"])
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func statementCreateCmd(client *apiClient, kind string) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   kind + " AMOUNT",
		Short: fmt.Sprintf("Record a %s for the logged in user", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.do(cmd.Context(), http.MethodPost, "/api/v1/statements/"+kind, map[string]any{
				"amount":      args[0],
				"description": description,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Statement description")
	cmd.Flags().StringVar(&client.idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func transferCmd(client *apiClient) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "transfer RECIPIENT_ID AMOUNT",
		Short: "Transfer money from the logged in user to another user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.do(cmd.Context(), http.MethodPost, "/api/v1/statements/transfers/"+args[0], map[string]any{
				"amount":      args[1],
				"description": description,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Transfer description")
	cmd.Flags().StringVar(&client.idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func balanceCmd(client *apiClient) *cobra.Command {
	var withStatements bool

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the logged in user's balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/statements/balance"
			if withStatements {
				path += "?with_statement=true"
			}

			result, err := client.do(cmd.Context(), http.MethodGet, path, nil)
			if err != nil {
				return err
			}

			if !withStatements {
				fmt.Fprintf(cmd.OutOrStdout(), "Balance: %v\n", result["balance"])
				return nil
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&withStatements, "with-statements", false, "Include the statements the balance is derived from")

	return cmd
}

func statementCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "statement STATEMENT_ID",
		Short: "Show one of the logged in user's statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.do(cmd.Context(), http.MethodGet, "/api/v1/statements/"+args[0], nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func ledgerCmd(client *apiClient) *cobra.Command {
	ledger := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledger.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			result, err := client.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil)
			if err != nil {
				fmt.Fprintln(out, "Consistency check FAILED")
				return err
			}

			fmt.Fprintln(out, "Consistency check PASSED")
			fmt.Fprintf(out, "Status: %v\n", result["status"])
			return nil
		},
	})

	return ledger
}

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if migrationsPath == "" {
				migrationsPath = cfg.MigrationsPath
			}
			return nil
		},
	}

	migrate.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to $DATABASE_URL)")
	migrate.PersistentFlags().StringVar(&migrationsPath, "path", "", "Migrations directory (defaults to $MIGRATIONS_PATH)")

	run := func(fn func(string, string, zerolog.Logger) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithWriter(logger.Config{Level: "info", Format: "console"}, cmd.ErrOrStderr())
			return fn(databaseURL, migrationsPath, log)
		}
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(func(url, path string, log zerolog.Logger) error { return migrateUp(url, path, log) }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE:  run(func(url, path string, log zerolog.Logger) error { return migrateDown(url, path, log) }),
		},
	)

	return migrate
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
