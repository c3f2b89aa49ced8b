// Package pg wires PostgreSQL into the service: a pgx connection pool opened
// with retries, schema bootstrap through goose migrations read from an fs.FS,
// a readiness probe and helpers that classify pgx errors.
package pg
