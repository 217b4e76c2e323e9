package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

var (
	baseURL string
	userA   string
	userB   string
	noVenue bool
)

type TestClient struct {
	baseURL string
	client  *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

var rootCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Smoke-test a running Starstruck agent",
	Long: `Exercises a running agent end to end.

Users are given as comma-separated source:identifier pairs, e.g.
  --a github:ada,letterboxd:ada,location:Lagos --b spotify:<token>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(cmd, NewTestClient(baseURL).allChecks())
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(cmd, []check{{"Health Check", NewTestClient(baseURL).testHealthCheck}})
	},
}

var agentCardCmd = &cobra.Command{
	Use:   "agent-card",
	Short: "Fetch and validate the A2A agent card",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(cmd, []check{{"Agent Card", NewTestClient(baseURL).testAgentCard}})
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full match through POST /run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(cmd, []check{{"Match Run", NewTestClient(baseURL).testRun}})
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Run a match through POST /stream and print each event",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(cmd, []check{{"Match Stream", NewTestClient(baseURL).testStream}})
	},
}

var a2aCmd = &cobra.Command{
	Use:   "a2a",
	Short: "Send the match as an A2A message/send request",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecks(cmd, []check{{"A2A Task", NewTestClient(baseURL).testA2A}})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the agent")
	rootCmd.PersistentFlags().StringVar(&userA, "a", "github:octocat,location:San Francisco", "User A identifiers")
	rootCmd.PersistentFlags().StringVar(&userB, "b", "github:torvalds", "User B identifiers")
	rootCmd.PersistentFlags().BoolVar(&noVenue, "no-venue", false, "Skip venue recommendations")
	rootCmd.AddCommand(healthCmd, agentCardCmd, runCmd, streamCmd, a2aCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type check struct {
	name string
	fn   func() bool
}

func (tc *TestClient) allChecks() []check {
	return []check{
		{"Health Check", tc.testHealthCheck},
		{"Agent Card", tc.testAgentCard},
		{"Match Run", tc.testRun},
		{"A2A Task", tc.testA2A},
	}
}

func runChecks(cmd *cobra.Command, checks []check) error {
	cmd.SilenceUsage = true
	printHeader("Starstruck Agent - Smoke Test")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, baseURL, colorReset)

	passed, failed := 0, 0
	for _, c := range checks {
		if c.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func parseUser(pairs string) map[string]any {
	ids := map[string]string{}
	user := map[string]any{"identifiers": ids}
	for _, pair := range strings.Split(pairs, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || val == "" {
			continue
		}
		if key == "location" {
			user["location"] = val
			continue
		}
		ids[key] = val
	}
	return user
}

func matchBody() map[string]any {
	return map[string]any{
		"user_a":        parseUser(userA),
		"user_b":        parseUser(userB),
		"include_venue": !noVenue,
	}
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	url := fmt.Sprintf("%s/health", tc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}

	var health map[string]string
	if err := json.Unmarshal(body, &health); err != nil || health["status"] != "ok" {
		printError(fmt.Sprintf("Expected {\"status\":\"ok\"}, got '%s'", string(body)))
		return false
	}

	printSuccess("Health check passed")
	return true
}

func (tc *TestClient) testAgentCard() bool {
	printTestHeader("Testing Agent Card Endpoint")

	url := fmt.Sprintf("%s/.well-known/agent.json", tc.baseURL)
	fmt.Printf("GET %s\n", url)

	resp, err := tc.client.Get(url)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		fmt.Printf("Response: %s\n", string(body))
		return false
	}

	var agentCard map[string]any
	if err := json.Unmarshal(body, &agentCard); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	for _, field := range []string{"name", "description", "url", "version", "capabilities", "skills"} {
		if _, ok := agentCard[field]; !ok {
			printError(fmt.Sprintf("Missing required field: %s", field))
			return false
		}
	}

	printSuccess("Agent card is valid")
	printJSON(body)
	return true
}

func (tc *TestClient) testRun() bool {
	printTestHeader("Testing Match Run")

	body, status, ok := tc.post("/run", matchBody())
	if !ok {
		return false
	}
	if status != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", status))
		printJSON(body)
		return false
	}

	var out struct {
		RunID      string            `json:"run_id"`
		UserACards []json.RawMessage `json:"user_a_cards"`
		UserBCards []json.RawMessage `json:"user_b_cards"`
		Venues     []json.RawMessage `json:"venues"`
		Trace      []string          `json:"trace"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}

	printSuccess(fmt.Sprintf("Run %s completed", out.RunID))
	fmt.Printf("%sTrace:%s %s\n", colorCyan, colorReset, strings.Join(out.Trace, " → "))
	fmt.Printf("%sCards:%s A=%d B=%d  %sVenues:%s %d\n",
		colorCyan, colorReset, len(out.UserACards), len(out.UserBCards), colorCyan, colorReset, len(out.Venues))
	printJSON(body)
	return true
}

func (tc *TestClient) testStream() bool {
	printTestHeader("Testing Match Stream")

	raw, _ := json.Marshal(matchBody())
	url := tc.baseURL + "/stream"
	fmt.Printf("POST %s\n", url)

	resp, err := tc.client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		printJSON(body)
		return false
	}

	var event string
	sawDone := false
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			var payload struct {
				Stage string `json:"stage"`
				Error string `json:"error"`
			}
			_ = json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &payload)
			switch event {
			case "node_complete":
				fmt.Printf("%s→ %s%s\n", colorPurple, payload.Stage, colorReset)
			case "done":
				sawDone = true
				printSuccess("Stream finished")
			case "error":
				printError(fmt.Sprintf("Stream failed at %s: %s", payload.Stage, payload.Error))
				return false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		printError(fmt.Sprintf("Reading stream: %v", err))
		return false
	}
	if !sawDone {
		printError("Stream ended without a done event")
	}
	return sawDone
}

func (tc *TestClient) testA2A() bool {
	printTestHeader("Testing A2A Task")

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("smoke-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": map[string]any{
			"message": map[string]any{
				"kind": "message",
				"role": "user",
				"parts": []map[string]any{
					{"kind": "data", "data": matchBody()},
				},
			},
			"configuration": map[string]any{
				"blocking":            true,
				"acceptedOutputModes": []string{"text", "data"},
			},
		},
	}

	body, status, ok := tc.post("/a2a/starstruck", request)
	if !ok {
		return false
	}
	if status != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", status))
		return false
	}

	var response struct {
		Error  json.RawMessage `json:"error"`
		Result struct {
			Status struct {
				State   string `json:"state"`
				Message struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"message"`
			} `json:"status"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		printError(fmt.Sprintf("Invalid JSON response: %v", err))
		return false
	}
	if len(response.Error) > 0 {
		printError("Request returned an error")
		printJSON(response.Error)
		return false
	}
	if response.Result.Status.State != "completed" {
		printError(fmt.Sprintf("Expected state 'completed', got '%s'", response.Result.Status.State))
		return false
	}

	printSuccess("A2A task completed")
	fmt.Printf("\n%sBriefing:%s\n", colorGreen, colorReset)
	fmt.Println(strings.Repeat("=", 80))
	for _, p := range response.Result.Status.Message.Parts {
		fmt.Println(p.Text)
	}
	fmt.Println(strings.Repeat("=", 80))
	return true
}

func (tc *TestClient) post(path string, payload any) ([]byte, int, bool) {
	url := tc.baseURL + path
	fmt.Printf("POST %s\n", url)

	raw, _ := json.MarshalIndent(payload, "", "  ")
	fmt.Printf("%sRequest:%s\n%s\n\n", colorYellow, colorReset, string(raw))

	resp, err := tc.client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return nil, 0, false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode, true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}

func printJSON(data []byte) {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err == nil {
		fmt.Printf("\n%sResponse:%s\n%s\n", colorYellow, colorReset, prettyJSON.String())
	}
}
