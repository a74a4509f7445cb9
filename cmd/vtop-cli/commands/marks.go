package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var marksSem *string

func init() {
	marksSem = marksCmd.Flags().String("sem", "", "Semester id to fetch marks for.")
	rootCmd.AddCommand(marksCmd)
}

var marksCmd = &cobra.Command{
	Use:   "marks [--sem <semester id>]",
	Short: "Fetches and shows per-course marks.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)
		defer store.Close()
		service := createService(cfg, store)

		semester := activeSemester(cmd.Context(), store, *marksSem)
		records, createdAt, err := service.RefreshMarks(cmd.Context(), semester)
		if err != nil {
			fatal("failed to fetch marks", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Course", "Title", "Max", "Weightage %", "Scored", "Weighted"})
		for _, record := range records {
			for _, mark := range record.Marks {
				t.AppendRow(table.Row{
					record.CourseCode,
					mark.Title,
					mark.Max,
					mark.Weightage,
					mark.Scored,
					mark.WeightageMark,
				})
			}
		}
		t.Render()
		fmt.Println("fetched:", createdAt)
	},
}
