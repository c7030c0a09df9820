// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RecordStore: Physical record, relation and queue persistence
//   - HoldingsLookup: Agencies holding items for a bibliographic id
//   - RuleHost: Classification and record-splitting rules
//   - RecordCodec: Encoding of record content (marcxchange)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Metrics: Update counters. Without it nothing is recorded.
//   - BlobSource: Remote import sources. Without it only local files import.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
