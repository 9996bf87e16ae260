package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/budgetsage/budgetsage/internal/locale"
	"github.com/budgetsage/budgetsage/internal/model"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate spending per month and category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := store.SummaryStats(cmd.Context())
			if err != nil {
				return err
			}
			if stats.RecordCount == 0 {
				cmd.Println("No data imported yet. Run: sage import <file.csv>")
				return nil
			}

			periods := make([]model.Period, 0, len(stats.ByPeriod))
			for p := range stats.ByPeriod {
				periods = append(periods, p)
			}
			sort.Slice(periods, func(i, j int) bool { return periods[i].Month() < periods[j].Month() })

			for _, p := range periods {
				cmd.Printf("%-10s NT$%s\n", p, locale.Amount(stats.ByPeriod[p]))
				byCat := stats.ByPeriodCategory[p]
				cats := make([]string, 0, len(byCat))
				for c := range byCat {
					cats = append(cats, c)
				}
				sort.Strings(cats)
				for _, c := range cats {
					cmd.Printf("    %-12s NT$%s\n", c, locale.Amount(byCat[c]))
				}
			}
			cmd.Printf("\nTotal: NT$%s across %d records\n", locale.Amount(stats.Total), stats.RecordCount)
			return nil
		},
	}
}
