package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "walletctl",
		Short: "Wallet service admin CLI",
		Long:  `A command line interface for the wallet service admin API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the wallet API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("WALLET_TOKEN"), "Admin bearer token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the caller's wallet balance",
		Run: func(cmd *cobra.Command, args []string) {
			showBalance()
		},
	}

	var reason string
	adjustCmd := &cobra.Command{
		Use:   "adjust <owner> <delta>",
		Short: "Apply a signed balance delta to a wallet",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			adjust(args[0], args[1], reason)
		},
	}
	adjustCmd.Flags().StringVar(&reason, "reason", "", "Reason recorded on the ledger entry")
	adjustCmd.MarkFlagRequired("reason")

	rootCmd.AddCommand(consistencyCmd, balanceCmd, adjustCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func doRequest(method, path string, body any) []byte {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(respBody))
		os.Exit(1)
	}
	return respBody
}

func checkConsistency() {
	body := doRequest(http.MethodGet, "/api/v1/admin/ledger/consistency", nil)

	var result struct {
		Wallets       int   `json:"wallets"`
		Discrepancies []any `json:"discrepancies"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wallets checked: %d\n", result.Wallets)
	if len(result.Discrepancies) == 0 {
		fmt.Println("Consistency check PASSED")
		return
	}
	fmt.Printf("Consistency check FAILED: %d discrepancies\n%s\n", len(result.Discrepancies), string(body))
	os.Exit(1)
}

func showBalance() {
	body := doRequest(http.MethodGet, "/api/v1/wallet", nil)
	fmt.Println(string(body))
}

func adjust(owner, delta, reason string) {
	body := doRequest(http.MethodPost, "/api/v1/admin/adjust", map[string]string{
		"owner_id": owner,
		"delta":    delta,
		"reason":   reason,
	})
	fmt.Println(string(body))
}
