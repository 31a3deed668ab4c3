package mediadb

import (
	"context"
	"database/sql"
	"errors"
)

// idResolver maps manufacturer and series names to row ids during one
// Update, inserting rows the first time a name is seen.
type idResolver struct {
	manufacturers map[string]int64
	series        map[int64]map[string]int64

	getManufacturer    *sql.Stmt
	insertManufacturer *sql.Stmt
	getSeries          *sql.Stmt
	insertSeries       *sql.Stmt
}

func newIDResolver(ctx context.Context, db *sql.DB) (*idResolver, error) {
	r := &idResolver{
		manufacturers: make(map[string]int64),
		series:        make(map[int64]map[string]int64),
	}
	statements := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&r.getManufacturer, `SELECT id FROM manufacturer WHERE name = ?`},
		{&r.insertManufacturer, `INSERT INTO manufacturer(name) VALUES (?)`},
		{&r.getSeries, `SELECT id FROM series WHERE manufacturer_id = ? AND name = ?`},
		{&r.insertSeries, `INSERT INTO series(manufacturer_id, name) VALUES (?, ?)`},
	}
	for _, s := range statements {
		stmt, err := db.PrepareContext(ctx, s.query)
		if err != nil {
			_ = r.Close()
			return nil, dbError("prepare id lookup", err)
		}
		*s.dst = stmt
	}
	return r, nil
}

// ManufacturerID returns the id for name, creating the row if needed.
func (r *idResolver) ManufacturerID(ctx context.Context, name string) (int64, error) {
	if id, ok := r.manufacturers[name]; ok {
		return id, nil
	}
	id, err := lookupOrInsert(ctx, r.getManufacturer, r.insertManufacturer, "manufacturer", name)
	if err != nil {
		return 0, err
	}
	r.manufacturers[name] = id
	return id, nil
}

// SeriesID returns the id for name under manufacturerID, creating the row if
// needed.
func (r *idResolver) SeriesID(ctx context.Context, manufacturerID int64, name string) (int64, error) {
	if id, ok := r.series[manufacturerID][name]; ok {
		return id, nil
	}
	id, err := lookupOrInsert(ctx, r.getSeries, r.insertSeries, "series", manufacturerID, name)
	if err != nil {
		return 0, err
	}
	if r.series[manufacturerID] == nil {
		r.series[manufacturerID] = make(map[string]int64)
	}
	r.series[manufacturerID][name] = id
	return id, nil
}

func lookupOrInsert(ctx context.Context, get, insert *sql.Stmt, entity string, args ...any) (int64, error) {
	var id int64
	err := get.QueryRowContext(ctx, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, dbError("fetch "+entity+" id", err)
	}
	res, err := insert.ExecContext(ctx, args...)
	if err != nil {
		return 0, dbError("add "+entity, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, dbError("add "+entity, err)
	}
	return id, nil
}

func (r *idResolver) manufacturerCount() int {
	return len(r.manufacturers)
}

func (r *idResolver) Close() error {
	var errs []error
	for _, stmt := range []*sql.Stmt{r.getManufacturer, r.insertManufacturer, r.getSeries, r.insertSeries} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	return errors.Join(errs...)
}
