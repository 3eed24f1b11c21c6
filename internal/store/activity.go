package store

import (
	"context"
	"errors"
	"time"

	"shobdo-cli/internal/model"
)

const defaultActivityLimit = 50

func (s Store) AppendActivity(ctx context.Context, a model.Activity) error {
	if a.Kind == "" {
		return errors.New("activity kind is empty")
	}
	if a.TS.IsZero() {
		a.TS = time.Now()
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	ok := 0
	if a.OK {
		ok = 1
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO activity(ts_unixms, actor, kind, target, ok, message) VALUES(?, ?, ?, ?, ?, ?)`,
		a.TS.UnixMilli(), a.Actor, a.Kind, a.Target, ok, a.Message,
	)
	return err
}

// ListActivity returns the newest entries first.
func (s Store) ListActivity(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT id, ts_unixms, actor, kind, target, ok, message FROM activity ORDER BY ts_unixms DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Activity{}
	for rows.Next() {
		var (
			a    model.Activity
			tsMS int64
			ok   int
		)
		if err := rows.Scan(&a.ID, &tsMS, &a.Actor, &a.Kind, &a.Target, &ok, &a.Message); err != nil {
			return nil, err
		}
		a.TS = time.UnixMilli(tsMS)
		a.OK = ok != 0
		out = append(out, a)
	}
	return out, rows.Err()
}
