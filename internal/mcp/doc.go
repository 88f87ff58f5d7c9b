// Package mcp implements the MCP server surface for TextPress.
//
// The server exposes the boundary operations as MCP tools over stdio:
//
//   - add_entry: ingest text, optionally auto-process
//   - process_entries: run the cleaning pass over pending entries
//   - list_entries: recent entries with processing status
//   - search_entries: indexed or substring search over cleaned text
//   - get_entry: full raw + cleaned record
//   - get_stats: counts by status and index availability
//
// Tool handlers validate parameters, delegate to the service layer,
// and shape JSON responses. Protocol errors carry JSON-RPC style
// codes.
package mcp
