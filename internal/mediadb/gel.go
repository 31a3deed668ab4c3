package mediadb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"csmedia/internal/defs"
	"csmedia/internal/logging"
)

// GelDb caches color filters.
type GelDb struct {
	*Store
}

// OpenGel opens the gel cache.
func OpenGel(ctx context.Context, opts Options) (*GelDb, error) {
	return openGel(ctx, opts, defaultConnector)
}

func openGel(ctx context.Context, opts Options, c connector) (*GelDb, error) {
	store, err := openStore(ctx, KindGel, "gel", opts, c)
	if err != nil {
		return nil, err
	}
	db := &GelDb{Store: store}
	store.loader = db
	return db, nil
}

func (d *GelDb) createTables(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, gelSchema); err != nil {
		return dbError("create gel table", err)
	}
	return nil
}

func (d *GelDb) load(ctx context.Context, ids *idResolver, progress ProgressFunc) (defs.Version, int, error) {
	file, err := defs.Open(d.defsPath)
	if err != nil {
		return defs.Version{}, 0, err
	}
	defer file.Close()

	insert, err := d.db.PrepareContext(ctx,
		`INSERT INTO gel(dcid, series_id, code, name, red, green, blue) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return defs.Version{}, 0, dbError("prepare gel insert", err)
	}
	defer insert.Close()

	rows := 0
	for {
		record, ok, err := file.Next()
		if err != nil {
			return defs.Version{}, rows, err
		}
		if !ok {
			break
		}
		if record.RecordName != "GEL" {
			continue
		}

		dcid, ok := record.Field("DCID")
		if !ok {
			return defs.Version{}, rows, defs.Errorf("", "missing DCID")
		}
		manufacturer, series, err := manufacturerSeries(record, dcid, "GELMANUFACTURER")
		if err != nil {
			return defs.Version{}, rows, err
		}
		gel, skip, err := parseGelInfo(record, dcid)
		if err != nil {
			return defs.Version{}, rows, err
		}
		if skip {
			d.logger.Debug("skipping gel without color", logging.String(logging.FieldDCID, dcid))
			continue
		}

		manufacturerID, err := ids.ManufacturerID(ctx, manufacturer)
		if err != nil {
			return defs.Version{}, rows, err
		}
		seriesID, err := ids.SeriesID(ctx, manufacturerID, series)
		if err != nil {
			return defs.Version{}, rows, err
		}
		if _, err := insert.ExecContext(ctx, dcid, seriesID, gel.Code, gel.Name,
			gel.Red(), gel.Green(), gel.Blue()); err != nil {
			return defs.Version{}, rows, dbError(dcid+" could not add gel", err)
		}
		rows++
		if progress != nil {
			progress(file.Position(), file.Size())
		}
	}
	return file.Version(), rows, nil
}

// parseGelInfo reads "code,name...,red,green,blue". Names may hold commas, so
// the color is always the last three parts. A two part value has no color
// and is skipped.
func parseGelInfo(record defs.Def, dcid string) (Gel, bool, error) {
	info, err := requireField(record, dcid, "GELINFO")
	if err != nil {
		return Gel{}, false, err
	}
	parts := strings.Split(info, ",")
	switch {
	case len(parts) == 2:
		return Gel{}, true, nil
	case len(parts) < 5:
		return Gel{}, false, defs.Errorf(dcid, "GELINFO is malformed: %q", info)
	}

	var rgb [3]uint8
	for i, part := range parts[len(parts)-3:] {
		value, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return Gel{}, false, defs.Errorf(dcid, "GELINFO has a bad color component %q", part)
		}
		rgb[i] = uint8(value)
	}
	return Gel{
		DCID: dcid,
		Code: parts[0],
		Name: strings.Join(parts[1:len(parts)-3], ","),
		ARGB: packARGB(rgb[0], rgb[1], rgb[2]),
	}, false, nil
}

// GetGelForSeries lists the gels of series. Code and name orders are
// case-insensitive; color order is red, green, blue as stored.
func (d *GelDb) GetGelForSeries(ctx context.Context, series Series, sortBy Sort) ([]Gel, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT dcid, code, name, red, green, blue FROM gel WHERE series_id = ? ORDER BY %s`,
		sortBy.orderBy(),
	), series.ID)
	if err != nil {
		return nil, dbError("list gels", err)
	}
	defer rows.Close()

	var result []Gel
	for rows.Next() {
		gel, err := scanGel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, gel)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list gels", err)
	}

	switch sortBy {
	case SortName:
		sortFolded(result, func(g Gel) string { return g.Name })
	case SortCode:
		sortFolded(result, func(g Gel) string { return g.Code })
	}
	return result, nil
}

// FindGelByColor returns every gel with exactly this color, with the
// manufacturer and series it belongs to.
func (d *GelDb) FindGelByColor(ctx context.Context, red, green, blue uint8) ([]GelMatch, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT gel.dcid, gel.code, gel.name, gel.red, gel.green, gel.blue,
		       manufacturer.id, manufacturer.name, series.id, series.name
		FROM gel
		JOIN series ON series.id = gel.series_id
		JOIN manufacturer ON manufacturer.id = series.manufacturer_id
		WHERE gel.red = ? AND gel.green = ? AND gel.blue = ?
		ORDER BY manufacturer.name ASC, series.name ASC, gel.code ASC`,
		red, green, blue,
	)
	if err != nil {
		return nil, dbError("find gel by color", err)
	}
	defer rows.Close()

	var result []GelMatch
	for rows.Next() {
		var (
			match   GelMatch
			r, g, b int64
		)
		if err := rows.Scan(&match.Gel.DCID, &match.Gel.Code, &match.Gel.Name, &r, &g, &b,
			&match.Manufacturer.ID, &match.Manufacturer.Name, &match.Series.ID, &match.Series.Name); err != nil {
			return nil, dbError("scan gel", err)
		}
		match.Gel.ARGB = packARGB(uint8(r), uint8(g), uint8(b))
		result = append(result, match)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("find gel by color", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGel(row rowScanner) (Gel, error) {
	var (
		gel     Gel
		r, g, b int64
	)
	if err := row.Scan(&gel.DCID, &gel.Code, &gel.Name, &r, &g, &b); err != nil {
		return Gel{}, dbError("scan gel", err)
	}
	gel.ARGB = packARGB(uint8(r), uint8(g), uint8(b))
	return gel, nil
}
