package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var examsSem *string

func init() {
	examsSem = examsCmd.Flags().String("sem", "", "Semester id to fetch the schedule for.")
	rootCmd.AddCommand(examsCmd)
}

var examsCmd = &cobra.Command{
	Use:   "exams [--sem <semester id>]",
	Short: "Fetches and shows the exam schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)
		defer store.Close()
		service := createService(cfg, store)

		semester := activeSemester(cmd.Context(), store, *examsSem)
		groups, createdAt, err := service.RefreshExamSchedule(cmd.Context(), semester)
		if err != nil {
			fatal("failed to fetch exam schedule", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Exam", "Course", "Date", "Session", "Time", "Venue", "Seat"})
		for _, group := range groups {
			for _, row := range group.Rows {
				t.AppendRow(table.Row{
					group.Type,
					row.CourseCode,
					row.ExamDate,
					row.ExamSession,
					row.ExamTime,
					row.Venue,
					row.SeatNo,
				})
			}
			t.AppendSeparator()
		}
		t.Render()
		fmt.Println("fetched:", createdAt)
	},
}
