package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// addEntryTool returns the tool definition for add_entry
func addEntryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_entry",
		Description: "Ingest free-form text as a new raw entry awaiting processing",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to ingest (must not be blank)",
				},
				"auto_process": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, run a processing pass immediately after ingestion",
					"default":     false,
				},
			},
			Required: []string{"text"},
		},
	}
}

// processEntriesTool returns the tool definition for process_entries
func processEntriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "process_entries",
		Description: "Run the cleaning and enrichment pass over all pending entries",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// listEntriesTool returns the tool definition for list_entries
func listEntriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_entries",
		Description: "List recent entries with their processing status, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of entries to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of entries to skip",
					"default":     0,
					"minimum":     0,
				},
			},
		},
	}
}

// searchEntriesTool returns the tool definition for search_entries
func searchEntriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_entries",
		Description: "Search cleaned entries. Uses the full-text index when available (token match), else a substring scan; the two modes return different result sets for the same query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (must not be blank)",
				},
				"use_index": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, prefer the full-text index when it is available",
					"default":     true,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getEntryTool returns the tool definition for get_entry
func getEntryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_entry",
		Description: "Get the full raw and cleaned record for one entry",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Raw entry id",
				},
			},
			Required: []string{"id"},
		},
	}
}

// getStatsTool returns the tool definition for get_stats
func getStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_stats",
		Description: "Get entry counts by status and index availability",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
