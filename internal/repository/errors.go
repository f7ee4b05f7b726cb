package repository

import "github.com/jackc/pgx/v5"

// ErrNotFound is returned when a record does not exist. The pgx-backed
// repositories surface pgx.ErrNoRows for missing rows; the in-memory
// implementations return the same sentinel so callers handle one error.
var ErrNotFound = pgx.ErrNoRows
