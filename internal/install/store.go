package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"csmedia/internal/mediadb"
)

// CachePath returns the SQLite cache file for kind inside cacheDir.
func CachePath(cacheDir string, kind mediadb.Kind) string {
	return filepath.Join(cacheDir, string(kind)+".db")
}

// StoreOptions returns the mediadb options for kind from this layout.
func (l Layout) StoreOptions(cacheDir string, kind mediadb.Kind, allowWriting bool, logger *slog.Logger) (mediadb.Options, error) {
	defsPath, ok := l.DefsPath(kind)
	if !ok {
		return mediadb.Options{}, fmt.Errorf("install %q has no defs file for %s", l.Root, kind)
	}
	opts := mediadb.Options{
		Path:         CachePath(cacheDir, kind),
		DefsPath:     defsPath,
		AllowWriting: allowWriting,
		Logger:       logger,
	}
	if mediadb.IsImageKind(kind) {
		opts.IndexPath = l.Paths[FileImagesIndex]
		opts.DataPath = l.Paths[FileImagesData]
		if opts.IndexPath == "" || opts.DataPath == "" {
			return mediadb.Options{}, fmt.Errorf("install %q has no image data for %s", l.Root, kind)
		}
	}
	return opts, nil
}

// OpenStore opens the cache for kind.
func OpenStore(ctx context.Context, layout Layout, cacheDir string, kind mediadb.Kind, allowWriting bool, logger *slog.Logger) (mediadb.Library, error) {
	opts, err := layout.StoreOptions(cacheDir, kind, allowWriting, logger)
	if err != nil {
		return nil, err
	}
	if kind == mediadb.KindGel {
		db, err := mediadb.OpenGel(ctx, opts)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	db, err := mediadb.OpenImage(ctx, kind, opts)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// OpenStores opens every kind in kinds. On failure the stores already opened
// are closed.
func OpenStores(ctx context.Context, layout Layout, cacheDir string, kinds []mediadb.Kind, allowWriting bool, logger *slog.Logger) ([]mediadb.Library, error) {
	stores := make([]mediadb.Library, 0, len(kinds))
	for _, kind := range kinds {
		store, err := OpenStore(ctx, layout, cacheDir, kind, allowWriting, logger)
		if err != nil {
			return nil, errors.Join(err, CloseAll(stores))
		}
		stores = append(stores, store)
	}
	return stores, nil
}

// CloseAll closes every store and joins their errors.
func CloseAll(stores []mediadb.Library) error {
	var errs []error
	for _, store := range stores {
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s cache: %w", store.Kind(), err))
		}
	}
	return errors.Join(errs...)
}
