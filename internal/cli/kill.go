package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/berth-cluster/berth/internal/daemon"
	"github.com/berth-cluster/berth/internal/domain"
)

func init() {
	rootCmd.AddCommand(killCmd)
}

var killCmd = &cobra.Command{
	Use:   "kill TASK_ID",
	Short: "Expunge a terminated task from the tracker",
	Args:  cobra.ExactArgs(1),
	RunE:  runKill,
}

func runKill(cmd *cobra.Command, args []string) error {
	taskID := args[0]
	app, err := domain.ParseTaskID(taskID)
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Tracker.Terminated(cmd.Context(), app, taskID); err != nil {
		return err
	}

	fmt.Printf("Expunged %s\n", taskID)
	return nil
}
