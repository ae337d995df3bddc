package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/berth-cluster/berth/internal/daemon"
	"github.com/berth-cluster/berth/internal/domain"
)

func init() {
	rootCmd.AddCommand(psCmd)
}

var psCmd = &cobra.Command{
	Use:   "ps [APP_PATH]",
	Short: "List tracked tasks, optionally for one application",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPs,
}

func runPs(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	var apps []domain.AppPath
	if len(args) == 1 {
		app, err := domain.ParseAppPath(args[0])
		if err != nil {
			return err
		}
		apps = []domain.AppPath{app}
	} else {
		if err := d.Tracker.LoadAll(ctx); err != nil {
			return err
		}
		apps = d.Tracker.Apps()
	}

	var tasks []domain.Task
	for _, app := range apps {
		appTasks, err := d.Tracker.GetTasks(ctx, app)
		if err != nil {
			return err
		}
		tasks = append(tasks, appTasks...)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks tracked.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK ID\tHOST\tSTATE\tHEALTH\tSTARTED")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Host,
			taskState(t),
			taskHealth(t),
			startedAt(t),
		)
	}
	return w.Flush()
}

// taskState renders the last reported lifecycle state, "-" before the
// first report.
func taskState(t domain.Task) string {
	if t.Status == nil {
		return "-"
	}
	return string(t.Status.State)
}

func taskHealth(t domain.Task) string {
	if t.Status == nil {
		return "-"
	}
	return t.Status.Health.String()
}

func startedAt(t domain.Task) string {
	if t.StartedAt == domain.TimeNever {
		return "-"
	}
	return time.UnixMilli(t.StartedAt).Format("15:04:05")
}
