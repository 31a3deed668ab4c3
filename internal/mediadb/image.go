package mediadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"csmedia/internal/defs"
	"csmedia/internal/logging"
)

// imageKind describes how one image-backed kind appears in the defs file,
// the data index and the cache.
type imageKind struct {
	kind Kind
	// table is the cache table name.
	table string
	// record is the defs record name.
	record string
	// prefix starts the MANUFACTURER and INFO field names.
	prefix string
	// dataType is the media type column of the data index.
	dataType string
}

var imageKinds = map[Kind]imageKind{
	KindDisc:   {kind: KindDisc, table: "disc", record: "FXDISC", prefix: "FXDISC", dataType: "animation"},
	KindEffect: {kind: KindEffect, table: "effect", record: "FXGLASS", prefix: "FXGLASS", dataType: "effect"},
	KindGobo:   {kind: KindGobo, table: "gobo", record: "GOBO", prefix: "GOBO", dataType: "gobo"},
}

// IsImageKind reports whether kind is cached with swatch images.
func IsImageKind(kind Kind) bool {
	_, ok := imageKinds[kind]
	return ok
}

// ImageDb caches gobos, effect glass or effect discs along with their swatch
// images.
type ImageDb struct {
	*Store
	info      imageKind
	indexPath string
	dataPath  string
}

// OpenImage opens the cache for an image-backed kind.
func OpenImage(ctx context.Context, kind Kind, opts Options) (*ImageDb, error) {
	return openImage(ctx, kind, opts, defaultConnector)
}

func openImage(ctx context.Context, kind Kind, opts Options, c connector) (*ImageDb, error) {
	info, ok := imageKinds[kind]
	if !ok {
		return nil, fmt.Errorf("%s is not an image kind", kind)
	}
	store, err := openStore(ctx, kind, info.table, opts, c)
	if err != nil {
		return nil, err
	}
	db := &ImageDb{
		Store:     store,
		info:      info,
		indexPath: opts.IndexPath,
		dataPath:  opts.DataPath,
	}
	store.loader = db
	return db, nil
}

func (d *ImageDb) createTables(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, imageSchema(d.info.table)); err != nil {
		return dbError("create "+d.info.table+" table", err)
	}
	return nil
}

func (d *ImageDb) load(ctx context.Context, ids *idResolver, progress ProgressFunc) (defs.Version, int, error) {
	file, err := defs.OpenImage(d.defsPath, d.indexPath, d.dataPath)
	if err != nil {
		return defs.Version{}, 0, err
	}
	defer file.Close()

	insert, err := d.db.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s(dcid, series_id, code, name, image) VALUES (?, ?, ?, ?, ?)`, d.info.table))
	if err != nil {
		return defs.Version{}, 0, dbError("prepare "+d.info.table+" insert", err)
	}
	defer insert.Close()

	manufacturerKey := d.info.prefix + "MANUFACTURER"
	infoKey := d.info.prefix + "INFO"
	rows := 0
	for {
		record, ok, err := file.Next()
		if err != nil {
			return defs.Version{}, rows, err
		}
		if !ok {
			break
		}
		if record.RecordName != d.info.record {
			continue
		}

		dcid, ok := record.Field("IMAGE")
		if !ok {
			d.logger.Debug("skipping record without image", logging.String("record", record.RecordName))
			continue
		}
		image, found, err := file.DataForDCID(d.info.dataType, dcid)
		if err != nil {
			return defs.Version{}, rows, err
		}
		if !found {
			d.logger.Debug("skipping record with no image data", logging.String(logging.FieldDCID, dcid))
			continue
		}

		manufacturer, series, err := manufacturerSeries(record, dcid, manufacturerKey)
		if err != nil {
			return defs.Version{}, rows, err
		}
		info, err := requireField(record, dcid, infoKey)
		if err != nil {
			return defs.Version{}, rows, err
		}
		parts := strings.Split(info, ",")
		if len(parts) < 2 {
			return defs.Version{}, rows, defs.Errorf(dcid, "%s is malformed: %q", infoKey, info)
		}
		code := parts[0]
		name := strings.Join(parts[1:], ",")

		manufacturerID, err := ids.ManufacturerID(ctx, manufacturer)
		if err != nil {
			return defs.Version{}, rows, err
		}
		seriesID, err := ids.SeriesID(ctx, manufacturerID, series)
		if err != nil {
			return defs.Version{}, rows, err
		}
		if _, err := insert.ExecContext(ctx, dcid, seriesID, code, name, image); err != nil {
			return defs.Version{}, rows, dbError(dcid+" could not add "+string(d.kind), err)
		}
		rows++
		if progress != nil {
			progress(file.Position(), file.Size())
		}
	}
	return file.Version(), rows, nil
}

// GetForSeries lists the entities of series. The result is ordered by the
// folded sort key, so letter case never decides the order.
func (d *ImageDb) GetForSeries(ctx context.Context, series Series, sortBy Sort) ([]ImageEntity, error) {
	if sortBy == SortColor {
		return nil, fmt.Errorf("%s entries cannot be sorted by color", d.kind)
	}
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT dcid, code, name, image FROM %s WHERE series_id = ? ORDER BY %s`,
		d.info.table, sortBy.orderBy(),
	), series.ID)
	if err != nil {
		return nil, dbError("list "+d.info.table, err)
	}
	defer rows.Close()

	var result []ImageEntity
	for rows.Next() {
		var entity ImageEntity
		if err := rows.Scan(&entity.DCID, &entity.Code, &entity.Name, &entity.Image); err != nil {
			return nil, dbError("scan "+d.info.table, err)
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list "+d.info.table, err)
	}

	if sortBy == SortName {
		sortFolded(result, func(e ImageEntity) string { return e.Name })
	} else {
		sortFolded(result, func(e ImageEntity) string { return e.Code })
	}
	return result, nil
}

// GetImageForDCID returns the swatch stored for dcid in any series.
func (d *ImageDb) GetImageForDCID(ctx context.Context, dcid string) ([]byte, bool, error) {
	var image []byte
	err := d.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT image FROM %s WHERE dcid = ? LIMIT 1`, d.info.table), dcid,
	).Scan(&image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, dbError("fetch image for "+dcid, err)
	}
	if image == nil {
		image = []byte{}
	}
	return image, true, nil
}
