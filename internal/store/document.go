package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// documentRepo implements DocumentRepo on the documents table.
type documentRepo struct {
	db *sql.DB
}

func (r *documentRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("data").
		From(entsql.Table(documentsTable)).
		Where(entsql.EQ("doc_key", key)).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get document %q: %w", key, err)
	}
	return []byte(data), true, nil
}

func (r *documentRepo) Put(ctx context.Context, key string, data []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(documentsTable).
		Columns("doc_key", "data", "updated_at").
		Values(key, string(data), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("doc_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put document %q: %w", key, err)
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(documentsTable).
		Where(entsql.EQ("doc_key", key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return nil
}
