package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"csmedia/internal/install"
)

type layoutView struct {
	Root    string            `json:"root"`
	Files   map[string]string `json:"files"`
	Missing []string          `json:"missing,omitempty"`
	Checks  []install.Result  `json:"checks,omitempty"`
}

func newLayoutView(layout install.Layout) layoutView {
	view := layoutView{Root: layout.Root, Files: make(map[string]string, len(layout.Paths))}
	for file, path := range layout.Paths {
		view.Files[string(file)] = path
	}
	for _, file := range layout.Missing() {
		view.Missing = append(view.Missing, string(file))
	}
	return view
}

func newInstallCommand(ctx *commandContext) *cobra.Command {
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Inspect the vendor install",
	}
	installCmd.AddCommand(newInstallDetectCommand(ctx))
	installCmd.AddCommand(newInstallShowCommand(ctx))
	return installCmd
}

func newInstallDetectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Search the configured roots for a complete install",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := install.Detect(cfg.InstallCandidates())
			if err != nil {
				return err
			}
			view := newLayoutView(layout)
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found install at %s\n", layout.Root)
			if cfg.Paths.InstallDir == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Set paths.install_dir = %q to skip detection\n", layout.Root)
			}
			return nil
		},
	}
}

func newInstallShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved install files and access checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			layout, err := ctx.layout()
			if err != nil {
				return err
			}
			view := newLayoutView(layout)
			view.Checks = install.Check(layout, cfg.Paths.CacheDir)
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Install root: %s\n", layout.Root)
			fmt.Fprintf(out, "Cache directory: %s\n", cfg.Paths.CacheDir)
			rows := make([][]string, 0, len(install.Files))
			for _, file := range install.Files {
				rows = append(rows, []string{string(file), layout.Paths[file]})
			}
			writeLine(out, renderTable([]string{"File", "Path"}, rows, nil))
			checkRows := make([][]string, 0, len(view.Checks))
			for _, result := range view.Checks {
				checkRows = append(checkRows, []string{result.Name, passFail(result.Passed), result.Detail})
			}
			writeLine(out, renderTable([]string{"Check", "Result", "Detail"}, checkRows, nil))
			return nil
		},
	}
}

func writeLine(out io.Writer, text string) {
	fmt.Fprintln(out, text)
}
