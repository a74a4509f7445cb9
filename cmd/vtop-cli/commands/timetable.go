package commands

import (
	"fmt"
	"vtop-backend/lib/scrapers/vtop"
	"vtop-backend/lib/vtopstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(timetableCmd)
}

var timetableCmd = &cobra.Command{
	Use:   "timetable",
	Short: "Shows the cached weekly timetable.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)
		defer store.Close()

		var days []vtop.TimetableDay
		_, ok, err := store.ReadCache(cmd.Context(), vtopstore.KeyTimetable, &days)
		if err != nil {
			fatal("failed to read cache", err)
		}
		if !ok {
			fatal("no cached timetable", fmt.Errorf("run `vtop-cli refresh` first"))
		}

		t := newTable()
		t.AppendHeader(table.Row{"Day", "Start", "End", "Slot", "Course", "Venue"})
		for _, day := range days {
			for _, session := range day.Classes {
				t.AppendRow(table.Row{
					day.Day,
					session.Timings.Start,
					session.Timings.End,
					session.Slot,
					fmt.Sprintf("%s %s", session.CourseCode, session.CourseTitle),
					session.Venue,
				})
			}
			t.AppendSeparator()
		}
		t.Render()
	},
}
