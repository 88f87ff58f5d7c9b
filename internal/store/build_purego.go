//go:build !sqlite_cgo
// +build !sqlite_cgo

package store

// This file is compiled when building without the sqlite_cgo tag. It
// uses a pure Go SQLite implementation, which ships with the FTS5
// module compiled in.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// The pure Go implementation provides:
//   - No C compiler required
//   - Cross-platform compilation
//   - FTS5 full-text search support
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
