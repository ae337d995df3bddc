package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/berth-cluster/berth/internal/daemon"
)

func init() {
	rootCmd.AddCommand(appsCmd)
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List applications with tracked tasks",
	RunE:  runApps,
}

func runApps(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if err := d.Tracker.LoadAll(ctx); err != nil {
		return err
	}

	apps := d.Tracker.Apps()
	if len(apps) == 0 {
		fmt.Println("No applications tracked.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "APP PATH\tTASKS")
	for _, app := range apps {
		tasks, err := d.Tracker.GetTasks(ctx, app)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", app, len(tasks))
	}
	return w.Flush()
}
