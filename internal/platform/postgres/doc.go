// Package postgres provides PostgreSQL implementations of the store
// interfaces, using the pgx driver through database/sql. Session slots and
// card content are stored as JSONB; schedule updates use a version column
// for optimistic concurrency.
package postgres
