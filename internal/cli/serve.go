package cli

import (
	"github.com/spf13/cobra"

	"github.com/berth-cluster/berth/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Task store backend: sqlite, redis or memory (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost  string
	servePort  int
	serveStore string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the berth tracker daemon",
	Long: `Start the task tracker daemon and serve the HTTP API at
localhost:7513 until SIGINT or SIGTERM.

Configuration comes from $BERTH_HOME/config.toml (default ~/.berth).
Task records live in the configured store backend, a sqlite database
under $BERTH_HOME/data unless the config says otherwise. On boot the
daemon warms its task cache from that store, so a restarted daemon
answers from the state the previous one persisted. When overdue
reaping is enabled it also expunges tasks that never left staging
within the launch timeout.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(&cfg)

	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	return d.Serve(cmd.Context())
}

// applyServeFlags folds the flag overrides into cfg. Flags left at
// their zero value keep whatever the config file says.
func applyServeFlags(cfg *daemon.Config) {
	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if serveStore != "" {
		cfg.Store.Backend = serveStore
	}
}
