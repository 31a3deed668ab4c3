package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"csmedia/internal/fileutil"
	"csmedia/internal/mediadb"
)

func newManufacturersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "manufacturers <kind>",
		Short:     "List manufacturers in a cache",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := mediadb.ParseKind(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openBrowseStore(cmd, kind)
			if err != nil {
				return err
			}
			defer store.Close()

			manufacturers, err := store.GetManufacturers(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(manufacturers))
			for _, m := range manufacturers {
				rows = append(rows, []string{strconv.FormatInt(m.ID, 10), m.Name})
			}
			return render(ctx, cmd, manufacturers, []string{"ID", "Manufacturer"}, rows,
				[]columnAlignment{alignRight, alignLeft})
		},
	}
}

func newSeriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "series <kind> <manufacturer>",
		Short: "List a manufacturer's series",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := mediadb.ParseKind(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openBrowseStore(cmd, kind)
			if err != nil {
				return err
			}
			defer store.Close()

			manufacturer, err := findManufacturer(cmd.Context(), store, args[1])
			if err != nil {
				return err
			}
			series, err := store.GetSeriesForManufacturer(cmd.Context(), manufacturer)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(series))
			for _, s := range series {
				rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Name})
			}
			return render(ctx, cmd, series, []string{"ID", "Series"}, rows,
				[]columnAlignment{alignRight, alignLeft})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "list <kind> <manufacturer> <series>",
		Short: "List the entries of one series",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := mediadb.ParseKind(args[0])
			if err != nil {
				return err
			}
			sortBy, err := mediadb.ParseSort(sortFlag)
			if err != nil {
				return err
			}
			store, err := ctx.openBrowseStore(cmd, kind)
			if err != nil {
				return err
			}
			defer store.Close()

			series, err := findSeries(cmd.Context(), store, args[1], args[2])
			if err != nil {
				return err
			}

			switch db := store.(type) {
			case *mediadb.GelDb:
				gels, err := db.GetGelForSeries(cmd.Context(), series, sortBy)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(gels))
				for _, gel := range gels {
					rows = append(rows, []string{gel.Code, gel.Name, gel.Hex(), gel.DCID})
				}
				return render(ctx, cmd, gels, []string{"Code", "Name", "Color", "DCID"}, rows, nil)
			case *mediadb.ImageDb:
				entities, err := db.GetForSeries(cmd.Context(), series, sortBy)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entities))
				for _, entity := range entities {
					rows = append(rows, []string{entity.Code, entity.Name, entity.DCID, strconv.Itoa(len(entity.Image))})
				}
				return render(ctx, cmd, entities, []string{"Code", "Name", "DCID", "Bytes"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
			default:
				return fmt.Errorf("unsupported cache type %T", store)
			}
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "code", "Sort order: code, name, or color (gels only)")
	return cmd
}

func newImageCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "image <kind> <dcid>",
		Short: "Export the image blob stored for a gobo, effect, or disc",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := mediadb.ParseKind(args[0])
			if err != nil {
				return err
			}
			if !mediadb.IsImageKind(kind) {
				return fmt.Errorf("%s entries have no images", kind)
			}
			if strings.TrimSpace(output) == "" {
				return errors.New("--output is required (use - for stdout)")
			}
			store, err := ctx.openBrowseStore(cmd, kind)
			if err != nil {
				return err
			}
			defer store.Close()

			db, ok := store.(*mediadb.ImageDb)
			if !ok {
				return fmt.Errorf("unsupported cache type %T", store)
			}
			image, found, err := db.GetImageForDCID(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no %s image for dcid %q", kind, args[1])
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(image)
				return err
			}
			if err := fileutil.WriteFileAtomic(output, image, 0o644); err != nil {
				return fmt.Errorf("write image: %w", err)
			}
			if !ctx.jsonOutput() {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(image), output)
				return nil
			}
			return writeJSON(cmd, map[string]any{"dcid": args[1], "path": output, "bytes": len(image)})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file, or - for stdout")
	return cmd
}

func newGelCommand(ctx *commandContext) *cobra.Command {
	gelCmd := &cobra.Command{
		Use:   "gel",
		Short: "Gel utilities",
	}
	gelCmd.AddCommand(&cobra.Command{
		Use:   "find <red> <green> <blue>",
		Short: "Find gels with an exact color",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rgb [3]uint8
			for i, arg := range args {
				value, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 8)
				if err != nil {
					return fmt.Errorf("color component %q must be 0-255", arg)
				}
				rgb[i] = uint8(value)
			}
			store, err := ctx.openBrowseStore(cmd, mediadb.KindGel)
			if err != nil {
				return err
			}
			defer store.Close()

			db, ok := store.(*mediadb.GelDb)
			if !ok {
				return fmt.Errorf("unsupported cache type %T", store)
			}
			matches, err := db.FindGelByColor(cmd.Context(), rgb[0], rgb[1], rgb[2])
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(matches))
			for _, match := range matches {
				rows = append(rows, []string{match.Manufacturer.Name, match.Series.Name, match.Gel.Code, match.Gel.Name, match.Gel.Hex()})
			}
			return render(ctx, cmd, matches, []string{"Manufacturer", "Series", "Code", "Name", "Color"}, rows, nil)
		},
	})
	return gelCmd
}

func findManufacturer(ctx context.Context, store mediadb.Library, name string) (mediadb.Manufacturer, error) {
	manufacturers, err := store.GetManufacturers(ctx)
	if err != nil {
		return mediadb.Manufacturer{}, err
	}
	for _, m := range manufacturers {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return mediadb.Manufacturer{}, fmt.Errorf("no %s manufacturer named %q", store.Kind(), name)
}

func findSeries(ctx context.Context, store mediadb.Library, manufacturerName, seriesName string) (mediadb.Series, error) {
	manufacturer, err := findManufacturer(ctx, store, manufacturerName)
	if err != nil {
		return mediadb.Series{}, err
	}
	series, err := store.GetSeriesForManufacturer(ctx, manufacturer)
	if err != nil {
		return mediadb.Series{}, err
	}
	for _, s := range series {
		if strings.EqualFold(s.Name, strings.TrimSpace(seriesName)) {
			return s, nil
		}
	}
	return mediadb.Series{}, fmt.Errorf("%s has no series named %q", manufacturer.Name, seriesName)
}
