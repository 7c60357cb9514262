package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dashfin/finmirror/internal/adapter/http/dto"
	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/infrastructure/auth"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finmirror-cli",
		Short: "FinMirror CLI tool",
		Long:  `A command line interface for interacting with the FinMirror API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FinMirror API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token attached to requests")

	rootCmd.AddCommand(listCmd(), addCmd(), rmCmd(), statsCmd(), chartCmd(), tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the current transaction snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiRequest(http.MethodGet, "/api/v1/transactions", nil)
			if err != nil {
				return err
			}

			var snapshot dto.SnapshotResponse
			if err := json.Unmarshal(body, &snapshot); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if snapshot.Loading {
				fmt.Println("snapshot still loading")
				return nil
			}
			if snapshot.Error != "" {
				fmt.Printf("subscription error: %s\n", snapshot.Error)
			}

			fmt.Printf("%-28s %-20s %10s %-8s %-10s %s\n", "ID", "DESCRIPTION", "AMOUNT", "KIND", "STATUS", "DATE")
			for _, r := range snapshot.Records {
				fmt.Printf("%-28s %-20s %10s %-8s %-10s %s\n",
					r.ID, truncate(r.Description, 20), r.Amount.String(), r.Kind, r.Status, r.Date)
			}
			return nil
		},
	}
}

func addCmd() *cobra.Command {
	var req dto.RecordRequest
	var amount string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := decimalFromFlag(amount)
			if err != nil {
				return err
			}
			req.Amount = parsed

			payload, err := json.Marshal(req)
			if err != nil {
				return err
			}

			body, err := apiRequest(http.MethodPost, "/api/v1/transactions", bytes.NewReader(payload))
			if err != nil {
				return err
			}

			var created dto.RecordResponse
			if err := json.Unmarshal(body, &created); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("created %s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Description, "desc", "", "Transaction description")
	cmd.Flags().StringVar(&amount, "amount", "0", "Transaction amount")
	cmd.Flags().StringVar(&req.Kind, "kind", "expense", "income or expense")
	cmd.Flags().StringVar(&req.Status, "status", "completed", "completed or pending")
	cmd.Flags().StringVar(&req.Date, "date", "", "Transaction date (YYYY-MM-DD)")

	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := apiRequest(http.MethodDelete, "/api/v1/transactions/"+args[0], nil); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show income, expense and balance totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiRequest(http.MethodGet, "/api/v1/stats", nil)
			if err != nil {
				return err
			}

			var totals dto.TotalsResponse
			if err := json.Unmarshal(body, &totals); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printJSON(totals)
			return nil
		},
	}
}

func chartCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the income-vs-expense chart series",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiRequest(http.MethodGet, "/api/v1/chart?limit="+strconv.Itoa(limit), nil)
			if err != nil {
				return err
			}

			var resp struct {
				Points []dto.ChartPointResponse `json:"points"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printJSON(resp.Points)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of records to chart")

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret string
		uid    string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the given identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			verifier := auth.NewTokenVerifier(secret)
			signed, err := verifier.Generate(domain.Ownership{UID: uid, Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Println(signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret, must match the server")
	cmd.Flags().StringVar(&uid, "uid", "", "Owner UID")
	cmd.Flags().StringVar(&email, "email", "", "Owner email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("uid")

	return cmd
}

func apiRequest(method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func decimalFromFlag(value string) (d decimal.Decimal, err error) {
	d, err = decimal.NewFromString(value)
	if err != nil {
		err = fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d, err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func printJSON(v any) {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(pretty))
}
