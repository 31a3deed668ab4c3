package mediadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"csmedia/internal/defs"
)

// Health is a diagnostic snapshot of one cache.
type Health struct {
	Kind           Kind             `json:"kind"`
	Path           string           `json:"path"`
	Table          string           `json:"table"`
	Exists         bool             `json:"exists"`
	FileWritable   bool             `json:"file_writable"`
	HandleWritable bool             `json:"handle_writable"`
	Recovery       string           `json:"recovery"`
	ApplicationID  uint32           `json:"application_id"`
	StoredVersion  string           `json:"stored_version"`
	RowCounts      map[string]int64 `json:"row_counts"`
	MissingTables  []string         `json:"missing_tables,omitempty"`
	IntegrityCheck bool             `json:"integrity_check"`
	Error          string           `json:"error,omitempty"`
}

// CheckHealth inspects the cache file and its tables without changing them.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	health := Health{
		Kind:           s.kind,
		Path:           s.path,
		Table:          s.table,
		HandleWritable: s.writable,
		Recovery:       s.recovery.String(),
		RowCounts:      make(map[string]int64),
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat media cache: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("media cache path %q is a directory", s.path)
	}
	health.Exists = true
	health.FileWritable = unix.Access(s.path, unix.W_OK) == nil

	if s.db == nil {
		return health, errors.New("media cache connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	appID, err := s.applicationID(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.ApplicationID = appID

	packed, err := s.userVersion(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.StoredVersion = defs.UnpackVersion(packed).String()

	for _, table := range []string{"manufacturer", "series", s.table} {
		var name string
		err := s.db.QueryRowContext(connCtx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			health.MissingTables = append(health.MissingTables, table)
			continue
		}
		if err != nil {
			health.Error = err.Error()
			return health, dbError("query table info", err)
		}
		var count int64
		if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			health.Error = err.Error()
			return health, dbError("count "+table, err)
		}
		health.RowCounts[table] = count
	}

	var integrity string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health, dbError("integrity check", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrity, "ok")
	return health, nil
}
