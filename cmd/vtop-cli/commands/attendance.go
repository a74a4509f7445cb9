package commands

import (
	"fmt"
	"vtop-backend/lib/scrapers/vtop"
	"vtop-backend/lib/vtopstore"
	"vtop-backend/services/refresher"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(attendanceCmd)
}

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Shows cached attendance with skippable/needed class buffers.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)
		defer store.Close()

		var courses []vtop.AttendanceSummary
		createdAt, ok, err := store.ReadCache(cmd.Context(), vtopstore.KeyAttendance, &courses)
		if err != nil {
			fatal("failed to read cache", err)
		}
		if !ok {
			fatal("no cached attendance", fmt.Errorf("run `vtop-cli refresh` first"))
		}

		t := newTable()
		t.AppendHeader(table.Row{"Course", "Type", "Attended", "%", "Can Skip", "Needed"})
		for _, course := range courses {
			buffer := refresher.CalcBufferClasses(
				cfg.MinAttendance,
				course.Attended,
				course.Total-course.Attended,
			)
			t.AppendRow(table.Row{
				course.CourseDetails,
				course.ClassType,
				fmt.Sprintf("%d/%d", course.Attended, course.Total),
				course.Percentage,
				buffer.CanSkip,
				buffer.Needed,
			})
		}
		t.Render()
		fmt.Println("last refreshed:", createdAt)
	},
}
