package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"csmedia/internal/install"
	"csmedia/internal/mediadb"
	"csmedia/internal/updater"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:       "update [kinds...]",
		Short:     "Rebuild stale caches from the vendor defs files",
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
			stores, err := ctx.openStores(cmd.Context(), kinds, true)
			if err != nil {
				return err
			}
			defer install.CloseAll(stores)

			result, runErr := updater.Run(cmd.Context(), updater.Plan{
				Stores:      stores,
				Force:       force,
				Workers:     cfg.Update.Workers,
				LockTimeout: cfg.LockTimeout(),
				Reporter:    newReporter(ctx, cfg, cmd.ErrOrStderr()),
				Logger:      ctx.loggerValue(),
			})

			rows := make([][]string, 0, len(result.Outcomes))
			for _, outcome := range result.Outcomes {
				rows = append(rows, []string{
					string(outcome.Kind),
					string(outcome.Status),
					outcome.Version,
					outcome.Duration.Round(time.Millisecond).String(),
					outcome.Error,
				})
			}
			if err := render(ctx, cmd, result,
				[]string{"Kind", "Status", "Version", "Duration", "Error"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}); err != nil {
				return err
			}
			if runErr != nil {
				return fmt.Errorf("%d of %d caches failed to update: %w", len(result.Failed()), len(stores), runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rebuild caches even when they are up to date")
	return cmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "reset [kinds...]",
		Short:     "Remove every row from the selected caches",
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
			stores, err := ctx.openStores(cmd.Context(), kinds, true)
			if err != nil {
				return err
			}
			defer install.CloseAll(stores)

			type resetResult struct {
				Kind  mediadb.Kind `json:"kind"`
				Reset bool         `json:"reset"`
				Error string       `json:"error,omitempty"`
			}
			var (
				results []resetResult
				rows    [][]string
				errs    []error
			)
			for _, store := range stores {
				result := resetResult{Kind: store.Kind(), Reset: true}
				if err := updater.Reset(cmd.Context(), store, cfg.LockTimeout(), ctx.loggerValue()); err != nil {
					result.Reset = false
					result.Error = err.Error()
					errs = append(errs, fmt.Errorf("reset %s: %w", store.Kind(), err))
				}
				results = append(results, result)
				rows = append(rows, []string{string(result.Kind), yesNo(result.Reset), result.Error})
			}
			if err := render(ctx, cmd, results, []string{"Kind", "Reset", "Error"}, rows, nil); err != nil {
				return err
			}
			return errors.Join(errs...)
		},
	}
}
