// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// rawrepo update service. It lets AI assistants submit records to the update
// flow and inspect what was stored.
package mcp

import "errors"

// ErrMissingUpdateService is returned when the update service is not provided.
var ErrMissingUpdateService = errors.New("mcp: update service is required")

// errRecordsUnavailable is returned by read tools when no record service is set.
var errRecordsUnavailable = errors.New("mcp: record service not configured")
