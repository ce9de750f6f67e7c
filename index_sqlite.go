package hashlinks

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/xerrors"
)

const sqliteSchema = `create table if not exists links (
	id     text primary key,
	target text not null
)`

// The upsert only touches the row when it already holds the same target, so
// zero affected rows means the ID belongs to another URL.
const sqlitePut = `insert into links (id, target) values (?, ?)
	on conflict (id) do update set target = excluded.target
	where links.target = excluded.target`

// SQLiteIndex is an Index backed by a SQLite database.
type SQLiteIndex struct {
	db *sql.DB
}

// compile-time assertion that we implement Index
var _ Index = &SQLiteIndex{}

// NewSQLiteIndex returns an Index backed by a SQLite database, creating the
// links table if necessary.
func NewSQLiteIndex(dsn string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, xerrors.Errorf("could not open SQLite database: %w", err)
	}

	// SQLite has a single writer; one connection serializes concurrent requests
	// and keeps in-memory databases shared between them
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, xerrors.Errorf("could not create links table: %w", err)
	}

	return &SQLiteIndex{db: db}, nil
}

// Lookup returns the URL mapped to the provided ID.
func (i *SQLiteIndex) Lookup(ctx context.Context, id string) (longURL string, err error) {
	err = i.db.QueryRowContext(ctx, "select target from links where id = ?", id).Scan(&longURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", xerrors.Errorf("error resolving ID %s to long URL in database: %w", id, err)
	}

	return longURL, nil
}

// Put inserts the link unless the ID is taken by a different URL.
func (i *SQLiteIndex) Put(ctx context.Context, id, longURL string) error {
	res, err := i.db.ExecContext(ctx, sqlitePut, id, longURL)
	if err != nil {
		return xerrors.Errorf("error adding link %s to database: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return xerrors.Errorf("error checking result of adding link %s: %w", id, err)
	}
	if n == 0 {
		return ErrCollision
	}

	return nil
}

// Close closes the underlying database.
func (i *SQLiteIndex) Close() error {
	return i.db.Close()
}
