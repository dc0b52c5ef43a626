// Package repository defines the data access interfaces for the
// carbon-intensity service.
//
// # Repository Interface
//
// Repository covers the five operations the service needs: FindByID,
// ListOrderedByFrom, Insert, Persist and DeleteByID. FindByID returns a nil
// record and a nil error when the id is unknown.
//
// Writes report their outcome as a WriteResult tag instead of a driver
// error: WriteDuplicate when the compound (from, to) uniqueness constraint
// rejected the write and WriteMissing when an update targeted a row that no
// longer exists. The error return is reserved for storage failures.
//
// # Implementations
//
// The sqlite subpackage uses database/sql with the pure Go modernc driver.
// The postgres subpackage uses GORM on top of pgx. Both enforce uniqueness
// with a database constraint named intensity_from_to_unique; neither checks
// for duplicates before writing.
//
// # Testing
//
// The sqlite repository is tested with in-memory databases. The postgres
// repository has integration tests behind the "integration" build tag that
// start a container with testcontainers.
package repository
