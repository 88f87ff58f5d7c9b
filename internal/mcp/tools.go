package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jmhart/textpress/internal/store"
	"github.com/jmhart/textpress/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeBlankText     = -32001 // Text parameter is blank
	ErrorCodeBlankQuery    = -32002 // Query parameter is blank
	ErrorCodeNotFound      = -32003 // Entry does not exist
)

// handleAddEntry handles the add_entry tool invocation
func (s *Server) handleAddEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	text, ok := args["text"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param":  "text",
			"reason": "missing or not a string",
		})
	}

	id, err := s.service.AddRaw(ctx, text)
	if errors.Is(err, types.ErrBlankText) {
		return nil, newMCPError(ErrorCodeBlankText, "text cannot be blank", map[string]interface{}{
			"param": "text",
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to ingest entry", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"id":     id,
		"status": string(types.StatusPending),
	}

	if getBoolDefault(args, "auto_process", false) {
		processed, failed, err := s.service.ProcessPending(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "entry ingested but processing failed", map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
		}
		response["processed"] = processed
		response["failed"] = failed
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleProcessEntries handles the process_entries tool invocation
func (s *Server) handleProcessEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	processed, failed, err := s.service.ProcessPending(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "processing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"processed": processed,
		"failed":    failed,
	})), nil
}

// handleListEntries handles the list_entries tool invocation
func (s *Server) handleListEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}
	offset := getIntDefault(args, "offset", 0)
	if offset < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "offset must not be negative", map[string]interface{}{
			"param": "offset",
			"value": offset,
		})
	}

	summaries, err := s.service.Recent(ctx, limit, offset)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list entries", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := make([]map[string]interface{}, 0, len(summaries))
	for _, sum := range summaries {
		entry := map[string]interface{}{
			"id":           sum.ID,
			"text_preview": sum.TextPreview,
			"status":       string(sum.Status),
			"created_at":   sum.CreatedAt.Format("2006-01-02T15:04:05Z"),
			"has_clean":    sum.HasClean,
		}
		if sum.CleanID != nil {
			entry["clean_id"] = *sum.CleanID
		}
		if sum.Metadata != nil {
			entry["metadata"] = sum.Metadata
		}
		entries = append(entries, entry)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})), nil
}

// handleSearchEntries handles the search_entries tool invocation
func (s *Server) handleSearchEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or not a string",
		})
	}

	resp, err := s.service.SearchClean(ctx, query, getBoolDefault(args, "use_index", true))
	if errors.Is(err, types.ErrBlankQuery) {
		return nil, newMCPError(ErrorCodeBlankQuery, "query cannot be blank", map[string]interface{}{
			"param": "query",
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, hit := range resp.Results {
		results = append(results, map[string]interface{}{
			"id":            hit.ID,
			"raw_id":        hit.RawID,
			"clean_preview": hit.CleanPreview,
			"metadata":      hit.Metadata,
			"created_at":    hit.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results":     results,
		"count":       len(results),
		"mode":        string(resp.Mode),
		"duration_ms": resp.Duration.Milliseconds(),
	})), nil
}

// handleGetEntry handles the get_entry tool invocation
func (s *Server) handleGetEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id := getIntDefault(args, "id", 0)
	if id <= 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or not a positive integer",
		})
	}

	detail, err := s.service.GetEntryDetail(ctx, int64(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotFound, "entry not found", map[string]interface{}{
			"id": id,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get entry", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"id":         detail.Raw.ID,
		"text":       detail.Raw.Text,
		"status":     string(detail.Raw.Status),
		"created_at": detail.Raw.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if detail.Cleaned != nil {
		response["cleaned"] = map[string]interface{}{
			"id":         detail.Cleaned.ID,
			"clean_text": detail.Cleaned.CleanText,
			"metadata":   detail.Cleaned.Metadata,
			"created_at": detail.Cleaned.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStats handles the get_stats tool invocation
func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := s.service.CountStats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count entries", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"total":           counts.Total,
		"processed":       counts.Processed,
		"errors":          counts.Errors,
		"pending":         counts.Pending(),
		"index_available": s.service.CheckIndexAvailable(ctx),
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON pretty-prints a response map
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}
