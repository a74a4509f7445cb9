package commands

import (
	"fmt"
	"log/slog"
	"syscall"
	"vtop-backend/lib/scrapers/captive"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(wifiCmd)
}

var wifiCmd = &cobra.Command{
	Use:   "wifi <username>",
	Short: "Logs into the hostel Wi-Fi captive portal.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		if cfg.WifiUrl == "" {
			cfg.WifiUrl = "http://phc.prontonetworks.com/cgi-bin/authlogin"
		}

		fmt.Print("password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fatal("failed to read password", err)
		}

		client := captive.NewClient(cfg.WifiUrl)
		err = client.Login(cmd.Context(), args[0], string(password))
		if err != nil {
			fatal("wifi login failed", err)
		}
		slog.Info("connected")
	},
}
