// Package postgres implements the internal/store interfaces on PostgreSQL.
// It owns the SQL, the schema migrations, and the translation of driver
// errors (unique violations, missing rows) into the store's sentinel errors.
package postgres
