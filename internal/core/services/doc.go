// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Updater decomposes an incoming record into physical records and
// persists them through the RawRepo facade, which owns the structural
// rules of the repository: self-parent and enrichment-with-parent checks
// and the relation set written with every record.
package services
