package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"vtop-backend/lib/configutil"
	"vtop-backend/lib/scrapers/vtop"
	"vtop-backend/lib/vtopstore"
	"vtop-backend/services/refresher"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	PortalUrl     string `json:"portalUrl"`
	SolverUrl     string `json:"solverUrl"`
	Db            string `json:"db"`
	MinAttendance int    `json:"minAttendance"`
	WifiUrl       string `json:"wifiUrl"`
}

var rootCmd = &cobra.Command{
	Use:   "vtop-cli",
	Short: "vtop-cli scrapes the VTOP student portal and inspects the local cache.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		fatal("failed to read config", err)
	}
	if cfg.PortalUrl == "" {
		cfg.PortalUrl = "https://vtop.vit.ac.in"
	}
	if cfg.Db == "" {
		cfg.Db = "vtop.db"
	}
	if cfg.MinAttendance == 0 {
		cfg.MinAttendance = 75
	}
	return cfg
}

func openStore(cfg Config) vtopstore.Store {
	store, err := vtopstore.Open(cfg.Db)
	if err != nil {
		fatal("failed to open db", err)
	}
	return store
}

func createService(cfg Config, store vtopstore.Store) refresher.Service {
	client, err := vtop.NewClient(vtop.ClientOptions{
		BaseUrl:  cfg.PortalUrl,
		Solver:   vtop.NewSolverClient(cfg.SolverUrl),
		Keychain: store,
	})
	if err != nil {
		fatal("failed to initialize portal client", err)
	}
	return refresher.NewService(client, store)
}

// activeSemester resolves the --sem flag against the stored preference.
func activeSemester(ctx context.Context, store vtopstore.Store, flag string) string {
	if flag != "" {
		return flag
	}
	sem, ok, err := store.Pref(ctx, vtopstore.PrefDefaultSem)
	if err != nil {
		fatal("failed to read default semester", err)
	}
	if !ok {
		fatal("no default semester", fmt.Errorf("run `vtop-cli refresh` first or pass --sem"))
	}
	return sem
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
