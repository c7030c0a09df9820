// Package driving defines the services the outside world calls: the CLI,
// the MCP server, the record browser and the hot folder watcher all go
// through these interfaces.
//
// Implementations live in internal/core/services.
package driving
