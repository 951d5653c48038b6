package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// schemaStatements is applied in order; every statement is idempotent.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS {schema}`,
	`CREATE TABLE IF NOT EXISTS {schema}.roles (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS roles_live_name_idx ON {schema}.roles (name) WHERE NOT deleted`,
	`CREATE TABLE IF NOT EXISTS {schema}.permissions (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.role_permissions (
		role_id BIGINT NOT NULL REFERENCES {schema}.roles (id),
		permission_id BIGINT NOT NULL REFERENCES {schema}.permissions (id),
		PRIMARY KEY (role_id, permission_id)
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		role_id BIGINT NOT NULL REFERENCES {schema}.roles (id),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		last_login TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.events (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		visibility TEXT NOT NULL,
		organizer_id BIGINT NOT NULL REFERENCES {schema}.users (id),
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.event_invitees (
		event_id BIGINT NOT NULL REFERENCES {schema}.events (id),
		user_id BIGINT NOT NULL REFERENCES {schema}.users (id),
		PRIMARY KEY (event_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.event_attendees (
		event_id BIGINT NOT NULL REFERENCES {schema}.events (id),
		user_id BIGINT NOT NULL REFERENCES {schema}.users (id),
		PRIMARY KEY (event_id, user_id)
	)`,
}

// EnsureSchema creates the schema and tables the repositories read and write.
func EnsureSchema(ctx context.Context, exec pgExecutor, schema string) error {
	if schema == "" {
		schema = "public"
	}
	quoted := pgx.Identifier{schema}.Sanitize()

	for _, stmt := range schemaStatements {
		if _, err := exec.Exec(ctx, strings.ReplaceAll(stmt, "{schema}", quoted)); err != nil {
			return fmt.Errorf("ensure schema %s: %w", schema, err)
		}
	}
	return nil
}
