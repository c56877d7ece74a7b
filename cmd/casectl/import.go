package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/case-tracker/backend/internal/services"
	"github.com/case-tracker/backend/internal/tabular"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	var (
		user             string
		observationsPath string
	)

	cmd := &cobra.Command{
		Use:   "import <cases-file>",
		Short: "Import a case register",
		Long: `Upsert cases by code from a CSV, TSV or XLSX file, then append observations
from --observations (or the "Observations" sheet of the same workbook).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			actorID, err := a.editor(ctx, user)
			if err != nil {
				return err
			}

			cases, err := readFile(args[0], tabular.FirstSheet, true)
			if err != nil {
				return err
			}
			var observations *tabular.Sheet
			switch {
			case observationsPath != "":
				if observations, err = readFile(observationsPath, tabular.FirstSheet, true); err != nil {
					return err
				}
			case tabular.IsWorkbook(args[0]):
				observations, err = readFile(args[0], tabular.NamedSheet(services.ObservationsSheet), true)
				if err != nil && !errors.Is(err, tabular.ErrSheetNotFound) {
					return err
				}
			}

			res, err := a.importer.Import(ctx, cases, observations, actorID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "ID or email of the acting user (required)")
	cmd.Flags().StringVarP(&observationsPath, "observations", "o", "", "Observations file")
	cmd.MarkFlagRequired("user")

	return cmd
}

func newImportLegacyCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "import-legacy <log-file>",
		Short: "Import a legacy weekly log",
		Long: `Read the yearly worksheet of a weekly log (no header row) and turn every
"CODE - text" entry into a case update with a "Weekly Update" observation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			actorID, err := a.editor(ctx, user)
			if err != nil {
				return err
			}

			sheet, err := readFile(args[0], tabular.YearSheet, false)
			if err != nil {
				return err
			}
			res, err := a.legacy.Import(ctx, sheet, actorID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "ID or email of the acting user (required)")
	cmd.MarkFlagRequired("user")

	return cmd
}

func newExportCommand() *cobra.Command {
	var (
		output string
		sheet  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every case",
		Long: `Write all cases and their observations. The format follows the extension
of --output: .xlsx holds both sheets, .csv and .tsv hold the one named by --sheet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := services.ParseExportFormat(strings.ToLower(strings.TrimPrefix(filepath.Ext(output), ".")))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := a.export.Write(ctx, f, format, sheet); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "cases.xlsx", "Output file")
	cmd.Flags().StringVarP(&sheet, "sheet", "s", "cases", "Sheet for delimited formats (cases, observations)")

	return cmd
}

func readFile(path string, pick tabular.SheetPicker, header bool) (*tabular.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return tabular.Read(path, f, pick, header)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
