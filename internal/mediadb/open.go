package mediadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"csmedia/internal/logging"
)

// ApplicationID is stamped into every cache this package creates ("CSLB").
const ApplicationID uint32 = 0x43534C42

const sqliteReadOnly = 8

// Recovery reports what the open state machine had to do to get a handle.
type Recovery int

const (
	RecoveryNone Recovery = iota
	// RecoveryReopened means a read-only open and close cleared the fault.
	RecoveryReopened
	// RecoveryRecreated means the cache file was deleted and rebuilt empty.
	RecoveryRecreated
)

func (r Recovery) String() string {
	switch r {
	case RecoveryReopened:
		return "reopened"
	case RecoveryRecreated:
		return "recreated"
	default:
		return "none"
	}
}

type openState int

const (
	stateOpen openState = iota
	stateReopen
	stateFresh
	stateReady
)

func (s openState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateReopen:
		return "reopen"
	case stateFresh:
		return "fresh"
	default:
		return "ready"
	}
}

// connector holds the driver calls made while opening a cache. Tests swap
// them to drive the recovery paths.
type connector struct {
	connect    func(ctx context.Context, path string, writable bool) (*sql.DB, error)
	isReadOnly func(ctx context.Context, db *sql.DB) (bool, error)
	remove     func(path string) error
}

var defaultConnector = connector{
	connect:    connectSQLite,
	isReadOnly: probeReadOnly,
	remove:     os.Remove,
}

// handle is the outcome of the open state machine.
type handle struct {
	db       *sql.DB
	recovery Recovery
	// readOnly is set when writing was requested but even a fresh file
	// came back read-only.
	readOnly bool
}

func (c connector) open(ctx context.Context, path string, writable bool, logger *slog.Logger) (handle, error) {
	var (
		state    = stateOpen
		result   handle
		readOnly bool
	)
	for state != stateReady {
		var (
			db  *sql.DB
			err error
		)
		switch state {
		case stateOpen:
			db, err = c.connect(ctx, path, writable)
		case stateReopen:
			result.recovery = RecoveryReopened
			db, err = c.reopen(ctx, path, writable)
		case stateFresh:
			result.recovery = RecoveryRecreated
			db, err = c.fresh(ctx, path, writable)
			if err != nil {
				return handle{}, dbError("could not create a fresh database at "+path, err)
			}
		}
		if err != nil {
			logger.Warn("media cache open failed; trying recovery",
				logging.String("state", state.String()),
				logging.String("path", path),
				logging.Error(err),
			)
			state++
			continue
		}

		if writable {
			ro, probeErr := c.isReadOnly(ctx, db)
			if probeErr != nil {
				// A busy or locked file belongs to another writer, not to
				// recovery.
				_ = db.Close()
				return handle{}, dbError("could not check write access to "+path, probeErr)
			}
			if ro {
				if state != stateFresh {
					_ = db.Close()
					logger.Warn("media cache opened read-only; trying recovery",
						logging.String("state", state.String()),
						logging.String("path", path),
					)
					state++
					continue
				}
				readOnly = true
			}
		}
		result.db = db
		state = stateReady
	}
	result.readOnly = readOnly
	return result, nil
}

// reopen opens and closes the file read-only before opening it in the
// requested mode. That is enough to replay a stale write-ahead log.
func (c connector) reopen(ctx context.Context, path string, writable bool) (*sql.DB, error) {
	db, err := c.connect(ctx, path, false)
	if err != nil {
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, err
	}
	return c.connect(ctx, path, writable)
}

func (c connector) fresh(ctx context.Context, path string, writable bool) (*sql.DB, error) {
	for _, suffix := range []string{"-journal", "-wal", "-shm", ""} {
		if err := c.remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove %s: %w", path+suffix, err)
		}
	}
	return c.connect(ctx, path, writable)
}

func dataSourceName(path string, writable bool) string {
	mode := "ro"
	if writable {
		mode = "rwc"
	}
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)
	return fmt.Sprintf("file:%s?mode=%s&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", escaped, mode)
}

// connectSQLite opens path and forces a read of the schema so a file that is
// not a database fails here instead of on first use.
func connectSQLite(ctx context.Context, path string, writable bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName(path, writable))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	var objects int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&objects); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read sqlite schema: %w", err)
	}
	return db, nil
}

// probeReadOnly rewrites user_version with its current value inside a
// rolled back transaction. SQLite grants BEGIN IMMEDIATE on read-only
// handles, so only a real write reports SQLITE_READONLY.
func probeReadOnly(ctx context.Context, db *sql.DB) (bool, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		if isReadOnlyError(err) {
			return true, nil
		}
		return false, err
	}
	var version uint32
	err = conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	if err == nil {
		_, err = conn.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version))
	}
	if _, rollbackErr := conn.ExecContext(ctx, "ROLLBACK"); rollbackErr != nil && err == nil {
		err = rollbackErr
	}
	if err != nil {
		if isReadOnlyError(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func isReadOnlyError(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code()&0xFF == sqliteReadOnly
	}
	return false
}
