package postgres

import (
	"context"
	"database/sql"

	"github.com/w-h-a/redflag/retriever"
)

type dbKey struct{}

// WithDB reuses an open handle instead of dialing Location.
func WithDB(db *sql.DB) retriever.Option {
	return func(o *retriever.Options) {
		o.Context = context.WithValue(o.Context, dbKey{}, db)
	}
}

func DBFrom(ctx context.Context) (*sql.DB, bool) {
	db, ok := ctx.Value(dbKey{}).(*sql.DB)
	return db, ok && db != nil
}
