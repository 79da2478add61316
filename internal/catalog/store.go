// Package catalog owns customers and products. Every query is scoped by the
// owning account id; rows of other accounts behave as if they did not exist.
package catalog

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// setBuilder collects "column = ?" pairs for partial updates.
type setBuilder struct {
	clauses []string
	args    []any
}

func (b *setBuilder) add(column string, value any) {
	b.clauses = append(b.clauses, column+" = ?")
	b.args = append(b.args, value)
}

func (b *setBuilder) empty() bool { return len(b.clauses) == 0 }

func (b *setBuilder) sql() string { return strings.Join(b.clauses, ", ") }
