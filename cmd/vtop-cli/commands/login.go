package commands

import (
	"fmt"
	"log/slog"
	"syscall"
	"vtop-backend/lib/scrapers/vtop"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login <registration number>",
	Short: "Stores portal credentials and performs an initial login.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print("password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fatal("failed to read password", err)
		}

		cfg := readConfig()
		store := openStore(cfg)
		defer store.Close()

		err = store.SetCredentials(cmd.Context(), vtop.Credentials{
			Username: args[0],
			Password: string(password),
		})
		if err != nil {
			fatal("failed to store credentials", err)
		}
		// a fresh login invalidates whatever cookie was lying around
		err = store.ClearSession(cmd.Context())
		if err != nil {
			fatal("failed to clear stale session", err)
		}

		service := createService(cfg, store)
		_, err = service.RefreshSemesters(cmd.Context())
		if err != nil {
			fatal("login failed", err)
		}
		slog.Info("logged in", "username", args[0])
	},
}
