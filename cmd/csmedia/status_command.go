package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"csmedia/internal/defs"
	"csmedia/internal/install"
	"csmedia/internal/mediadb"
)

type cacheStatus struct {
	Kind          mediadb.Kind `json:"kind"`
	CachePath     string       `json:"cache_path"`
	Built         bool         `json:"built"`
	StoredVersion string       `json:"stored_version,omitempty"`
	DefsVersion   string       `json:"defs_version,omitempty"`
	UpToDate      bool         `json:"up_to_date"`
	Error         string       `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "status [kinds...]",
		Short:     "Show whether each cache matches its defs file",
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			layout, err := ctx.layout()
			if err != nil {
				return err
			}

			statuses := make([]cacheStatus, 0, len(kinds))
			rows := make([][]string, 0, len(kinds))
			for _, kind := range kinds {
				status := ctx.cacheStatus(cmd.Context(), layout, kind)
				statuses = append(statuses, status)
				detail := status.Error
				if detail == "" && !status.Built {
					detail = "not built"
				}
				rows = append(rows, []string{
					string(kind),
					status.StoredVersion,
					status.DefsVersion,
					yesNo(status.UpToDate),
					status.CachePath,
					detail,
				})
			}
			return render(ctx, cmd, statuses,
				[]string{"Kind", "Cache", "Defs", "Up to date", "Path", "Detail"}, rows, nil)
		},
	}
}

func (c *commandContext) cacheStatus(ctx context.Context, layout install.Layout, kind mediadb.Kind) cacheStatus {
	status := cacheStatus{Kind: kind, CachePath: install.CachePath(c.config.Paths.CacheDir, kind)}
	if defsPath, ok := layout.DefsPath(kind); ok {
		if version, err := defs.ReadVersion(defsPath); err == nil {
			status.DefsVersion = version.String()
		} else {
			status.Error = err.Error()
		}
	}
	if _, err := os.Stat(status.CachePath); errors.Is(err, os.ErrNotExist) {
		return status
	}
	status.Built = true

	store, err := install.OpenStore(ctx, layout, c.config.Paths.CacheDir, kind, false, c.loggerValue())
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer store.Close()

	if version, err := store.Version(ctx); err == nil {
		status.StoredVersion = version.String()
	}
	upToDate, err := store.UpToDate(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.UpToDate = upToDate
	return status
}
