package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/berth-cluster/berth/internal/daemon"
	"github.com/berth-cluster/berth/internal/domain"
)

func init() {
	rootCmd.AddCommand(shutdownCmd)
}

var shutdownCmd = &cobra.Command{
	Use:   "shutdown APP_PATH",
	Short: "Evict an application from the tracker cache",
	Long: `Evict an application's tasks from the in-memory cache. Persisted
records are untouched and reload on the application's next touch; use
this to force a re-sync with the store.`,
	Args: cobra.ExactArgs(1),
	RunE: runShutdown,
}

func runShutdown(cmd *cobra.Command, args []string) error {
	app, err := domain.ParseAppPath(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	d.Tracker.Shutdown(app)
	fmt.Printf("Evicted %s from the cache\n", app)
	return nil
}
