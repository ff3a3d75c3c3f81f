package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/config"
)

// APIResponse represents the standard response format for our tools
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Summary  string      `json:"summary"`
	Error    string      `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata contains response metadata
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	League    string    `json:"league,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Strategy  string    `json:"strategy,omitempty"`
	Duration  string    `json:"duration,omitempty"`
}

// LeagueSource is where handlers look leagues up
type LeagueSource interface {
	Names() []string
	Get(name string) (*config.LeagueData, error)
}

// formatJSONResponse converts a response struct to a formatted JSON string
func formatJSONResponse(response interface{}) (string, error) {
	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}

	return string(jsonBytes), nil
}

// textResult wraps text in a tool result
func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
		IsError: isError,
	}
}

// errorResult reports a failure to the client as an error result
func errorResult(prefix string, err error) *mcp.CallToolResult {
	return textResult(fmt.Sprintf("%s: %s", prefix, err.Error()), true)
}

// jsonResult formats a response as the tool's text content
func jsonResult(response APIResponse) *mcp.CallToolResult {
	jsonResponse, err := formatJSONResponse(response)
	if err != nil {
		return errorResult("Error formatting response", err)
	}
	return textResult(jsonResponse, false)
}

// requiredString returns a non-empty string argument
func requiredString(args map[string]interface{}, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s is required and must be a string", key)
	}
	return value, nil
}

// optionalString returns a string argument, or "" when absent
func optionalString(args map[string]interface{}, key string) (string, error) {
	raw, exists := args[key]
	if !exists || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return value, nil
}

// optionalNumber returns a numeric argument. JSON numbers arrive as float64.
func optionalNumber(args map[string]interface{}, key string) (float64, bool, error) {
	raw, exists := args[key]
	if !exists || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("%s must be a number", key)
		}
		return f, true, nil
	}
	return 0, false, fmt.Errorf("%s must be a number", key)
}

// optionalInt returns a whole-number argument
func optionalInt(args map[string]interface{}, key string) (int, bool, error) {
	f, ok, err := optionalNumber(args, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f != float64(int(f)) {
		return 0, false, fmt.Errorf("%s must be a whole number", key)
	}
	return int(f), true, nil
}

func newMetadata(leagueName string) Metadata {
	return Metadata{
		Timestamp: time.Now(),
		Source:    "league_file",
		League:    leagueName,
	}
}
