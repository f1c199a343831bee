package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screenrecall/pkg/cli"
	"screenrecall/pkg/config"
)

var queryFlags struct {
	address string
	format  string
	output  string
}

var queryCmd = &cobra.Command{
	Use:   "query [query text]",
	Short: "Query the running daemon",
	Long: `Send a natural-language query to a running screenrecalld daemon over
its loopback query API and print the answer and its citations.

The query path never schedules extraction or touches raw media; a query
against evidence the daemon has not yet extracted returns NEEDS_CLARIFICATION
or NOT_FOUND rather than triggering new work (spec.md §6).

Examples:
  # Ask about recent activity
  screenrecalld query "what was I looking at an hour ago"

  # Query a specific daemon address
  screenrecalld query --address 127.0.0.1:9090 "how many times did I open settings"

  # Machine-readable output
  screenrecalld query --format json "summarize the last hour"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryFlags.address, "address", "", "daemon query API address (uses config if not specified)")
	queryCmd.Flags().StringVar(&queryFlags.format, "format", "text", "output format: text, json")
	queryCmd.Flags().StringVarP(&queryFlags.output, "output", "o", "", "output file (default: stdout)")
}

type queryRequestBody struct {
	QueryText string            `json:"query_text"`
	Options   map[string]string `json:"options,omitempty"`
}

type queryResponseBody struct {
	State         string             `json:"state"`
	Answer        string             `json:"answer,omitempty"`
	Citations     []citationBody     `json:"citations"`
	PluginsInPath []string           `json:"plugins_in_path"`
	QueryHash     string             `json:"query_hash"`
}

type citationBody struct {
	RecordID      string `json:"record_id"`
	SpanID        string `json:"span_id,omitempty"`
	StableLocator string `json:"stable_locator,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	address := queryFlags.address
	if address == "" {
		address = cfg.Query.ListenAddress
	}

	body, err := json.Marshal(queryRequestBody{QueryText: strings.Join(args, " ")})
	if err != nil {
		return cli.NewCommandError("query", fmt.Errorf("failed to encode request: %w", err))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	httpResp, err := client.Post(fmt.Sprintf("http://%s/v1/query", address), "application/json", bytes.NewReader(body))
	if err != nil {
		return cli.NewCommandError("query", fmt.Errorf("failed to reach daemon at %s: %w", address, err))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return cli.NewCommandError("query", fmt.Errorf("daemon returned %s", httpResp.Status))
	}

	var resp queryResponseBody
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return cli.NewCommandError("query", fmt.Errorf("failed to decode response: %w", err))
	}

	var output *os.File
	if queryFlags.output != "" {
		output, err = os.Create(queryFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if queryFlags.format == "json" {
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp)
	}
	return printQueryText(output, resp)
}

func printQueryText(output *os.File, resp queryResponseBody) error {
	fmt.Fprintf(output, "State: %s\n", resp.State)
	if resp.Answer != "" {
		fmt.Fprintf(output, "\n%s\n", resp.Answer)
	}
	if len(resp.Citations) > 0 {
		fmt.Fprintln(output, "\nCitations:")
		for _, c := range resp.Citations {
			fmt.Fprintf(output, "  - record=%s span=%s locator=%s\n", c.RecordID, c.SpanID, c.StableLocator)
		}
	}
	if len(resp.PluginsInPath) > 0 {
		fmt.Fprintf(output, "\nPlugins in path: %s\n", strings.Join(resp.PluginsInPath, ", "))
	}
	fmt.Fprintf(output, "\nQuery hash: %s\n", resp.QueryHash)
	return nil
}
