// Package domain defines the core business entities for the rawrepo update service.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - MarcRecord: A logical bibliographic record (ordered fields and subfields)
//   - RecordID: The (bibliographic id, agency id) key of a physical record
//   - Record: A physical record as stored in the repository
//   - QueueJob: A change signal registered for downstream processing
//   - UpdateError: A typed, user-facing failure raised by the update flow
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
