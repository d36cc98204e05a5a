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
	token   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "diamondledger-cli",
		Short: "DiamondLedger CLI tool",
		Long:  `A command line interface for interacting with the DiamondLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the DiamondLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("DIAMONDLEDGER_TOKEN"), "Panel session token")

	loginCmd := &cobra.Command{
		Use:   "login [pin]",
		Short: "Exchange the admin PIN for a session token",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			login(args[0])
		},
	}
	rootCmd.AddCommand(loginCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard overview",
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(doGet("/api/v1/stats"))
		},
	}
	rootCmd.AddCommand(statsCmd)

	// Deposit commands
	depositsCmd := &cobra.Command{
		Use:   "deposits",
		Short: "Deposit request operations",
	}
	depositsCmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List pending deposit requests",
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(doGet("/api/v1/deposits/pending"))
		},
	})
	depositsCmd.AddCommand(&cobra.Command{
		Use:   "approve [id]",
		Short: "Approve a pending deposit request",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(doPost("/api/v1/deposits/"+args[0]+"/approve", nil))
		},
	})
	depositsCmd.AddCommand(&cobra.Command{
		Use:   "reject [id]",
		Short: "Reject a pending deposit request",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(doPost("/api/v1/deposits/"+args[0]+"/reject", nil))
		},
	})
	depositsCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show approved deposit totals",
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(doGet("/api/v1/deposits/stats"))
		},
	})
	rootCmd.AddCommand(depositsCmd)

	// Group commands
	groupsCmd := &cobra.Command{
		Use:   "groups",
		Short: "Group operations",
	}
	groupsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all groups",
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(doGet("/api/v1/groups/"))
		},
	})
	groupsCmd.AddCommand(&cobra.Command{
		Use:   "rate [group-id] [rate]",
		Short: "Set the per-diamond rate for a group",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(doPost("/api/v1/groups/"+args[0]+"/rate", map[string]string{"rate": args[1]}))
		},
	})
	rootCmd.AddCommand(groupsCmd)

	// Stock commands
	stockCmd := &cobra.Command{
		Use:   "stock",
		Short: "Stock and system toggle operations",
	}
	stockCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show stock and system status",
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(doGet("/api/v1/settings/stock/"))
		},
	})
	stockCmd.AddCommand(&cobra.Command{
		Use:   "set [amount]",
		Short: "Set the diamond stock counter",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				fmt.Printf("Invalid stock amount: %v\n", err)
				os.Exit(1)
			}
			printJSON(doPost("/api/v1/settings/stock/", map[string]int64{"stock": n}))
		},
	})
	rootCmd.AddCommand(stockCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func login(pin string) {
	body := doPost("/api/v1/auth/login", map[string]string{"pin": pin})

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Token: %s\n", result["token"])
	fmt.Println("Export DIAMONDLEDGER_TOKEN or pass --token to authenticated commands.")
}

func doGet(path string) []byte {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	return doRequest(req)
}

func doPost(path string, payload any) []byte {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	return doRequest(req)
}

func doRequest(req *http.Request) []byte {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}

func printJSON(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(buf.String())
}
