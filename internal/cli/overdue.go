package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/berth-cluster/berth/internal/daemon"
)

func init() {
	rootCmd.AddCommand(overdueCmd)
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List tasks that missed their launch window",
	RunE:  runOverdue,
}

func runOverdue(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Tracker.LoadAll(cmd.Context()); err != nil {
		return err
	}

	overdue := d.Tracker.OverdueTasks(time.Now())
	if len(overdue) == 0 {
		fmt.Println("No overdue tasks.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK ID\tHOST\tSTAGED")
	for _, t := range overdue {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			t.ID,
			t.Host,
			time.UnixMilli(t.StagedAt).Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}
