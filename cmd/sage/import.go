package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import ledger transactions from a CSV export",
		Long: `Imports rows with columns date, category, person, amount. Unparseable
rows are skipped and reported, not fatal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := store.ImportCSV(cmd.Context(), args[0], !noProgress)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			cmd.Printf("Imported %d records", result.Imported)
			if result.Skipped > 0 {
				cmd.Printf(" (%d skipped)", result.Skipped)
			}
			cmd.Println()
			return nil
		},
	}

	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}
