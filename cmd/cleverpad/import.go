package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/transfer"
)

var (
	importDir     string
	importPattern string
)

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import Markdown or JSON notes",
	Long: `Imports .md, .markdown and .json files as new notes. A leading "# Title"
line names a Markdown note. Files that cannot be parsed are reported and
skipped; the rest of the batch is imported.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		files, err := importFiles(args)
		if err != nil {
			fatal("failed to collect files", err)
		}
		if len(files) == 0 {
			info("No files to import.")
			return
		}

		ws := mustWorkspace(ctx)
		defer closeWorkspace(ctx, ws)

		im := transfer.Importer{MaxFiles: cfg.Import.MaxFiles, Logger: logger.Named("import")}
		report, err := im.Import(ctx, files, ws.Service)
		if err != nil {
			fatal("import rejected", err)
		}

		for _, n := range report.Imported {
			fmt.Printf("  %s %s\n", okColor.Sprint("+"), n.Title)
		}
		for _, f := range report.Failures {
			fmt.Printf("  %s %s %s\n", errColor.Sprint("-"), f.Name, faint(f.Err.Error()))
		}
		switch {
		case report.Failed == 0:
			success("Imported %d notes.", report.Succeeded)
		case report.Succeeded == 0:
			failure("No notes imported, %d files failed.", report.Failed)
			os.Exit(1)
		default:
			info("Imported %d notes, %d files failed.", report.Succeeded, report.Failed)
		}
	},
}

func importFiles(args []string) ([]transfer.File, error) {
	if importDir != "" {
		if len(args) > 0 {
			return nil, errors.New("pass files or --dir, not both")
		}
		return transfer.CollectFiles(os.DirFS(importDir), importPattern)
	}

	files := make([]transfer.File, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, transfer.File{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importDir, "dir", "d", "", "import every matching file below this directory")
	importCmd.Flags().StringVar(&importPattern, "pattern", "**/*.{md,markdown,json}", "glob used with --dir")
}
