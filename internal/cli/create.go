package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/berth-cluster/berth/internal/daemon"
	"github.com/berth-cluster/berth/internal/domain"
)

func init() {
	createCmd.Flags().StringVar(&createHost, "node", "", "Node the task was placed on (required)")
	createCmd.Flags().IntSliceVar(&createPorts, "ports", nil, "Ports allocated to the task")
	createCmd.Flags().StringToStringVar(&createAttrs, "attr", nil, "Placement attributes (key=value)")
	createCmd.MarkFlagRequired("node")
	rootCmd.AddCommand(createCmd)
}

var (
	createHost  string
	createPorts []int
	createAttrs map[string]string
)

var createCmd = &cobra.Command{
	Use:   "create APP_PATH",
	Short: "Register a freshly launched task",
	Long: `Register a task the scheduler just handed to the cluster. A new
task identifier is minted and the staged record is persisted.

Example:
  berth create /prod/api --node node-7 --ports 8080,8443 --attr rack=r2`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	app, err := domain.ParseAppPath(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	task := domain.NewStagedTask(app, createHost, createPorts, createAttrs, time.Now().UnixMilli())
	if err := d.Tracker.Created(cmd.Context(), app, task); err != nil {
		return err
	}

	fmt.Println(task.ID)
	return nil
}
