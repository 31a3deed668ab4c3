package mediadb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"csmedia/internal/defs"
	"csmedia/internal/logging"
)

// Kind names a media cache.
type Kind string

const (
	KindGel    Kind = "gel"
	KindGobo   Kind = "gobo"
	KindEffect Kind = "effect"
	KindDisc   Kind = "disc"
)

// Kinds lists every cache kind in display order.
var Kinds = []Kind{KindGel, KindGobo, KindEffect, KindDisc}

// ParseKind resolves a kind name, ignoring case and surrounding space.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Kinds {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown media kind %q", value)
}

func (k Kind) String() string { return string(k) }

// ProgressFunc receives the bytes consumed and the total size of the defs
// file after each inserted record. It runs on the updating goroutine.
type ProgressFunc func(position, size int64)

// Options configures how a cache is opened.
type Options struct {
	// Path is the SQLite cache file.
	Path string
	// DefsPath is the vendor defs file the cache is built from.
	DefsPath string
	// IndexPath and DataPath locate the image sidecars. Gel caches ignore them.
	IndexPath string
	DataPath  string

	AllowWriting bool
	Logger       *slog.Logger
}

// Library is the surface shared by every media cache.
type Library interface {
	Kind() Kind
	Path() string
	DefsPath() string
	Recovery() Recovery
	Writable() bool
	UpToDate(ctx context.Context) (bool, error)
	Version(ctx context.Context) (defs.Version, error)
	Update(ctx context.Context, progress ProgressFunc) error
	Reset(ctx context.Context) error
	GetManufacturers(ctx context.Context) ([]Manufacturer, error)
	GetSeriesForManufacturer(ctx context.Context, manufacturer Manufacturer) ([]Series, error)
	CheckHealth(ctx context.Context) (Health, error)
	Close() error
}

// loader is implemented by each kind to supply its schema and record
// interpretation.
type loader interface {
	createTables(ctx context.Context) error
	load(ctx context.Context, ids *idResolver, progress ProgressFunc) (defs.Version, int, error)
}

// Store is the engine shared by every kind: it owns the handle, the version
// stamp and the manufacturer and series tables.
type Store struct {
	db       *sql.DB
	path     string
	defsPath string
	kind     Kind
	table    string
	writable bool
	recovery Recovery
	logger   *slog.Logger
	loader   loader
}

func openStore(ctx context.Context, kind Kind, table string, opts Options, c connector) (*Store, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, dbErrorf("%s cache path is required", kind)
	}
	logger := logging.NewComponentLogger(opts.Logger, "mediadb").With(logging.String(logging.FieldKind, string(kind)))

	h, err := c.open(ctx, opts.Path, opts.AllowWriting, logger)
	if err != nil {
		return nil, err
	}
	if h.recovery != RecoveryNone {
		logger.Warn("media cache recovered",
			logging.String("recovery", h.recovery.String()),
			logging.String("path", opts.Path),
		)
	}
	if h.readOnly {
		logger.Warn("media cache is read-only; updates are disabled", logging.String("path", opts.Path))
	}

	store := &Store{
		db:       h.db,
		path:     opts.Path,
		defsPath: opts.DefsPath,
		kind:     kind,
		table:    table,
		writable: opts.AllowWriting && !h.readOnly,
		recovery: h.recovery,
		logger:   logger,
	}
	if err := store.prepare(ctx); err != nil {
		_ = h.db.Close()
		return nil, err
	}
	return store, nil
}

// prepare applies connection pragmas and checks the application id, stamping
// it on a new writable cache.
func (s *Store) prepare(ctx context.Context) error {
	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if s.writable {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return dbError(fmt.Sprintf("apply pragma %q", pragma), err)
		}
	}

	appID, err := s.applicationID(ctx)
	if err != nil {
		return err
	}
	switch {
	case appID == 0 && s.writable:
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA application_id = %d", int32(ApplicationID))); err != nil {
			return dbError("stamp application id", err)
		}
	case appID != ApplicationID:
		return dbErrorf("%s is not a library database", s.path)
	}
	return nil
}

func (s *Store) applicationID(ctx context.Context) (uint32, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA application_id").Scan(&id); err != nil {
		return 0, dbError("read application id", err)
	}
	return uint32(id), nil
}

func (s *Store) Kind() Kind { return s.kind }

func (s *Store) Path() string { return s.path }

// DefsPath returns the defs file the cache is built from.
func (s *Store) DefsPath() string { return s.defsPath }

// Recovery reports what was needed to open the cache.
func (s *Store) Recovery() Recovery { return s.recovery }

// Writable reports whether mutating operations are allowed.
func (s *Store) Writable() bool { return s.writable }

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) userVersion(ctx context.Context) (uint32, error) {
	var version int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, dbError("read user version", err)
	}
	return uint32(version), nil
}

// Version returns the defs version the cache was last built from.
func (s *Store) Version(ctx context.Context) (defs.Version, error) {
	packed, err := s.userVersion(ctx)
	if err != nil {
		return defs.Version{}, err
	}
	return defs.UnpackVersion(packed), nil
}

// UpToDate reports whether the cache was built from the defs file's current
// version. Only the defs header is read.
func (s *Store) UpToDate(ctx context.Context) (bool, error) {
	packed, err := s.userVersion(ctx)
	if err != nil {
		return false, err
	}
	version, err := defs.ReadVersion(s.defsPath)
	if err != nil {
		return false, err
	}
	return version.Matches(packed), nil
}

func (s *Store) setUserVersion(ctx context.Context, version defs.Version) error {
	if !s.writable {
		return ErrReadOnly
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version.Pack())); err != nil {
		return dbError("stamp user version", err)
	}
	return nil
}

// Update rebuilds the cache from the defs file. Existing rows are removed
// first. There is no surrounding transaction, so a failed update leaves a
// partial cache that still reports stale.
func (s *Store) Update(ctx context.Context, progress ProgressFunc) error {
	if !s.writable {
		return ErrReadOnly
	}
	started := time.Now()
	s.logger.Info("media cache update started", logging.String("defs", s.defsPath))

	if err := s.createManufacturerSeriesTables(ctx); err != nil {
		return err
	}
	if err := s.loader.createTables(ctx); err != nil {
		return err
	}
	if err := s.clear(ctx); err != nil {
		return err
	}

	ids, err := newIDResolver(ctx, s.db)
	if err != nil {
		return err
	}
	defer ids.Close()

	version, rows, err := s.loader.load(ctx, ids, progress)
	if err != nil {
		return err
	}
	if err := s.setUserVersion(ctx, version); err != nil {
		return err
	}
	if err := s.optimize(ctx); err != nil {
		return err
	}

	s.logger.Info("media cache update completed",
		logging.Int("rows", rows),
		logging.Int("manufacturers", ids.manufacturerCount()),
		logging.String("version", version.String()),
		logging.Duration("duration", time.Since(started)),
	)
	return nil
}

// Reset removes every media, series and manufacturer row.
func (s *Store) Reset(ctx context.Context) error {
	if !s.writable {
		return ErrReadOnly
	}
	if err := s.createManufacturerSeriesTables(ctx); err != nil {
		return err
	}
	if err := s.loader.createTables(ctx); err != nil {
		return err
	}
	return s.clear(ctx)
}

// clear deletes children before parents. Cascades would cover series rows,
// the explicit deletes keep the result independent of foreign key support.
func (s *Store) clear(ctx context.Context) error {
	for _, table := range []string{s.table, "series", "manufacturer"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return dbError("clear "+table, err)
		}
	}
	return nil
}

func (s *Store) createManufacturerSeriesTables(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, manufacturerSeriesSchema); err != nil {
		return dbError("create manufacturer and series tables", err)
	}
	return nil
}

func (s *Store) optimize(ctx context.Context) error {
	for _, stmt := range []string{"PRAGMA optimize", "VACUUM"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return dbError(strings.ToLower(stmt), err)
		}
	}
	return nil
}

// GetManufacturers lists manufacturers by name.
func (s *Store) GetManufacturers(ctx context.Context) ([]Manufacturer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM manufacturer ORDER BY name ASC`)
	if err != nil {
		return nil, dbError("list manufacturers", err)
	}
	defer rows.Close()

	var result []Manufacturer
	for rows.Next() {
		var m Manufacturer
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, dbError("scan manufacturer", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list manufacturers", err)
	}
	return result, nil
}

// GetSeriesForManufacturer lists a manufacturer's series by name.
func (s *Store) GetSeriesForManufacturer(ctx context.Context, manufacturer Manufacturer) ([]Series, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM series WHERE manufacturer_id = ? ORDER BY name ASC`,
		manufacturer.ID,
	)
	if err != nil {
		return nil, dbError("list series", err)
	}
	defer rows.Close()

	var result []Series
	for rows.Next() {
		var series Series
		if err := rows.Scan(&series.ID, &series.Name); err != nil {
			return nil, dbError("scan series", err)
		}
		result = append(result, series)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("list series", err)
	}
	return result, nil
}
