// Package sqldb implements the record and holdings stores over database/sql.
//
// The same statements serve SQLite and PostgreSQL. Queries are written with
// "?" placeholders and rebound by the Dialect of the opening adapter, and the
// upserts use the ON CONFLICT syntax both engines accept.
//
// # Transactions
//
// RecordStore.Save writes the record row and replaces its outgoing relations
// in one transaction, so a relation set is never observed half-written.
// Writes to different keys are independent transactions.
package sqldb
