package main

import (
	"errors"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"csmedia/internal/install"
	"csmedia/internal/mediadb"
)

type healthReport struct {
	Install []install.Result `json:"install"`
	Caches  []mediadb.Health `json:"caches"`
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "health [kinds...]",
		Short:     "Check install access and cache integrity",
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := ctx.layout()
			if err != nil {
				return err
			}

			report := healthReport{Install: install.Check(layout, cfg.Paths.CacheDir)}
			var errs []error
			for _, kind := range kinds {
				health := mediadb.Health{Kind: kind, Path: install.CachePath(cfg.Paths.CacheDir, kind)}
				if _, err := os.Stat(health.Path); errors.Is(err, os.ErrNotExist) {
					report.Caches = append(report.Caches, health)
					continue
				}
				store, err := install.OpenStore(cmd.Context(), layout, cfg.Paths.CacheDir, kind, false, ctx.loggerValue())
				if err != nil {
					health.Error = err.Error()
					report.Caches = append(report.Caches, health)
					errs = append(errs, err)
					continue
				}
				health, err = store.CheckHealth(cmd.Context())
				_ = store.Close()
				if err != nil {
					errs = append(errs, err)
				}
				report.Caches = append(report.Caches, health)
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
				return errors.Join(errs...)
			}

			out := cmd.OutOrStdout()
			checkRows := make([][]string, 0, len(report.Install))
			for _, result := range report.Install {
				checkRows = append(checkRows, []string{result.Name, passFail(result.Passed), result.Detail})
			}
			writeLine(out, renderTable([]string{"Check", "Result", "Detail"}, checkRows, nil))

			cacheRows := make([][]string, 0, len(report.Caches))
			for _, h := range report.Caches {
				cacheRows = append(cacheRows, []string{
					string(h.Kind),
					yesNo(h.Exists),
					h.StoredVersion,
					strconv.FormatInt(h.RowCounts[h.Table], 10),
					yesNo(h.IntegrityCheck),
					h.Recovery,
					h.Error,
				})
			}
			writeLine(out, renderTable(
				[]string{"Kind", "Exists", "Version", "Rows", "Integrity", "Recovery", "Error"}, cacheRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
			return errors.Join(errs...)
		},
	}
}

func passFail(passed bool) string {
	if passed {
		return "pass"
	}
	return "FAIL"
}
