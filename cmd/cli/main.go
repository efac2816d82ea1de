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

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	userID  int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tillbook-cli",
		Short: "Tillbook CLI tool",
		Long:  `A command line interface for interacting with the Tillbook cash drawer API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Tillbook API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().Int64Var(&userID, "user", 0, "Acting user id sent with write operations (0 = anonymous)")

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the current drawer balance",
		Run: func(cmd *cobra.Command, args []string) {
			showBalance()
		},
	}

	depositCmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit cash into the drawer",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			moveMoney("/api/v1/drawer/deposits", args[0])
		},
	}

	withdrawCmd := &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Withdraw cash from the drawer",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			moveMoney("/api/v1/drawer/withdrawals", args[0])
		},
	}

	// Entry commands
	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "Ledger entry operations",
	}

	entriesLsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List recent ledger entries",
		Run: func(cmd *cobra.Command, args []string) {
			limit, _ := cmd.Flags().GetInt("limit")
			listEntries(limit)
		},
	}
	entriesLsCmd.Flags().Int("limit", 20, "Maximum number of entries to list")

	entriesRmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Reverse a ledger entry",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			deleteResource("/api/v1/entries/" + args[0])
		},
	}

	entriesClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Reverse every active ledger entry",
		Run: func(cmd *cobra.Command, args []string) {
			deleteAll("/api/v1/entries")
		},
	}

	entriesCmd.AddCommand(entriesLsCmd, entriesRmCmd, entriesClearCmd)

	// Sale commands
	saleCmd := &cobra.Command{
		Use:   "sale",
		Short: "Sale operations",
	}

	saleAddCmd := &cobra.Command{
		Use:   "add <amount> <goods>",
		Short: "Record a sale",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			recordSale(args[0], args[1])
		},
	}

	saleLsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List sales",
		Run: func(cmd *cobra.Command, args []string) {
			limit, _ := cmd.Flags().GetInt("limit")
			listSales(limit)
		},
	}
	saleLsCmd.Flags().Int("limit", 20, "Maximum number of sales to list")

	saleRmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a sale and reverse its ledger entry",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			deleteResource("/api/v1/sales/" + args[0])
		},
	}

	saleClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every sale",
		Run: func(cmd *cobra.Command, args []string) {
			deleteAll("/api/v1/sales")
		},
	}

	saleCmd.AddCommand(saleAddCmd, saleLsCmd, saleRmCmd, saleClearCmd)

	rootCmd.AddCommand(balanceCmd, depositCmd, withdrawCmd, entriesCmd, saleCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRequest(method, path string, payload any) *http.Request {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	}

	return req
}

func do(req *http.Request) (int, []byte) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, body
}

func fail(status int, body []byte) {
	fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
	os.Exit(1)
}

func showBalance() {
	status, body := do(newRequest(http.MethodGet, "/api/v1/drawer/balance", nil))
	if status != http.StatusOK {
		fail(status, body)
	}

	var result struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Balance: %s\n", result.Balance)
}

func moveMoney(path, amount string) {
	status, body := do(newRequest(http.MethodPost, path, map[string]string{"amount": amount}))
	if status != http.StatusCreated {
		fail(status, body)
	}

	fmt.Printf("%s\n", prettyJSON(body))
}

func recordSale(amount, goods string) {
	payload := map[string]string{"amount": amount, "sold_goods": goods}
	status, body := do(newRequest(http.MethodPost, "/api/v1/sales", payload))
	if status != http.StatusCreated {
		fail(status, body)
	}

	fmt.Printf("%s\n", prettyJSON(body))
}

func listEntries(limit int) {
	path := fmt.Sprintf("/api/v1/entries?limit=%d", limit)
	status, body := do(newRequest(http.MethodGet, path, nil))
	if status != http.StatusOK {
		fail(status, body)
	}

	fmt.Printf("%s\n", prettyJSON(body))
}

func listSales(limit int) {
	path := fmt.Sprintf("/api/v1/sales?limit=%d", limit)
	status, body := do(newRequest(http.MethodGet, path, nil))
	if status != http.StatusOK {
		fail(status, body)
	}

	fmt.Printf("%s\n", prettyJSON(body))
}

func deleteResource(path string) {
	status, body := do(newRequest(http.MethodDelete, path, nil))
	if status != http.StatusNoContent {
		fail(status, body)
	}

	fmt.Println("OK")
}

func deleteAll(path string) {
	status, body := do(newRequest(http.MethodDelete, path, nil))
	if status != http.StatusOK {
		fail(status, body)
	}

	var result struct {
		Removed int `json:"removed"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Removed %d\n", result.Removed)
}

func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}

	return buf.String()
}
