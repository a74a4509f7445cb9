package commands

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Scrapes the portal and replaces the local cache.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)
		defer store.Close()
		service := createService(cfg, store)

		t1 := time.Now()
		result, err := service.RefreshAll(cmd.Context())
		if err != nil {
			fatal("refresh failed", err)
		}
		t2 := time.Now()

		slog.Info(
			"refreshed",
			"semester", result.Semester.Name,
			"courses", len(result.Courses),
			"seconds", t2.Sub(t1).Seconds(),
		)
	},
}
