package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Get returns the value stored under k, or "" when the key is absent.
func (s Store) Get(k string) (string, error) {
	ctx := context.Background()
	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, strings.TrimSpace(k)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetMany writes all pairs in one transaction so a reader never sees half a session.
func (s Store) SetMany(pairs map[string]string) error {
	ctx := context.Background()
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for k, v := range pairs {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v) VALUES(?, ?)`, strings.TrimSpace(k), v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s Store) Delete(keys ...string) error {
	ctx := context.Background()
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, k := range keys {
		if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, strings.TrimSpace(k)); err != nil {
			return err
		}
	}
	return nil
}
