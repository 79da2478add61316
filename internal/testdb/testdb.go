// Package testdb hands tests a migrated in-memory sqlite database.
package testdb

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"pdv/m/internal/database"
	"pdv/m/internal/migrations"
)

func New(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

// CreateUser inserts an account row and returns its id.
func CreateUser(t testing.TB, db *sqlx.DB, email string) int64 {
	t.Helper()
	now := time.Now().UTC()
	var id int64
	err := db.QueryRowx(`INSERT INTO users (open_id, name, email, password, role, created_at, updated_at, last_signed_in)
		VALUES (?, ?, ?, ?, 'user', ?, ?, ?) RETURNING id`, "open-"+email, email, email, "x", now, now, now).Scan(&id)
	require.NoError(t, err)
	return id
}
