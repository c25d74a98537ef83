package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stationctl/stationctl/internal/config"
	"github.com/stationctl/stationctl/internal/downloadstation"
	"github.com/stationctl/stationctl/internal/logger"
)

type app struct {
	configPath string

	cfg    *config.Config
	log    *logger.Logger
	client *downloadstation.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "stationctl",
		Short: "Manage Synology Download Station tasks",
		Long: `stationctl talks to a Synology Download Station instance: list and
inspect download tasks, create tasks from URLs, magnet links or torrent
files, and control their lifecycle.

Connection settings come from a config file, STATIONCTL_* environment
variables or a .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file")

	root.AddCommand(
		a.listCmd(),
		a.getCmd(),
		a.addCmd(),
		a.uploadCmd(),
		a.pauseCmd(),
		a.resumeCmd(),
		a.completeCmd(),
		a.deleteCmd(),
		a.clearCmd(),
	)

	return root
}

// setup loads configuration and builds the API client. Credentials may
// come from a .env file, the environment or the config file.
func (a *app) setup() error {
	_ = godotenv.Load()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})

	client, err := downloadstation.New(downloadstation.Config{
		BaseURL:  cfg.Station.URL,
		Username: cfg.Station.Username,
		Password: cfg.Station.Password,
		Timeout:  time.Duration(cfg.Station.Timeout) * time.Second,
	}, a.log.Logger)
	if err != nil {
		return err
	}
	a.client = client

	return nil
}

// connect authenticates before the first operation of a command run.
func (a *app) connect(ctx context.Context) error {
	return a.client.Authenticate(ctx)
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all download tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			tasks, err := a.client.GetTasks(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("%d task(s)\n", tasks.Total)
			for i := range tasks.Task {
				printTask(&tasks.Task[i])
			}
			return nil
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>...",
		Short: "Show detailed information for specific tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			info, err := a.client.GetTask(ctx, args...)
			if err != nil {
				return err
			}

			for i := range info.Task {
				printTaskDetail(&info.Task[i])
			}
			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var destination string

	cmd := &cobra.Command{
		Use:   "add <uri>",
		Short: "Create a download task from a URL or magnet link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			if err := a.client.CreateTask(ctx, args[0], destination); err != nil {
				return err
			}
			fmt.Println("task created")
			return nil
		},
	}

	cmd.Flags().StringVarP(&destination, "destination", "d", "downloads", "destination share folder")
	return cmd
}

func (a *app) uploadCmd() *cobra.Command {
	var destination string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Create a download task from a torrent file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read torrent file: %w", err)
			}

			if err := a.connect(ctx); err != nil {
				return err
			}

			if err := a.client.CreateTaskFromFile(ctx, data, filepath.Base(args[0]), destination); err != nil {
				return err
			}
			fmt.Println("task created")
			return nil
		},
	}

	cmd.Flags().StringVarP(&destination, "destination", "d", "downloads", "destination share folder")
	return cmd
}

func (a *app) pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id>",
		Short: "Pause a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			if err := a.client.Pause(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("task paused")
			return nil
		},
	}
}

func (a *app) resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id>",
		Short: "Resume a paused task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			op, err := a.client.Resume(ctx, args[0])
			if err != nil {
				return err
			}
			printOperation(op)
			return nil
		},
	}
}

func (a *app) completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Force a task to complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			done, err := a.client.Complete(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("task %s completing\n", done.TaskID)
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	var forceComplete bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			op, err := a.client.DeleteTask(ctx, args[0], forceComplete)
			if err != nil {
				return err
			}
			printOperation(op)
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceComplete, "force-complete", false, "move the downloaded portion to the destination before deleting")
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all finished tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.connect(ctx); err != nil {
				return err
			}

			if err := a.client.ClearCompleted(ctx); err != nil {
				return err
			}
			fmt.Println("finished tasks cleared")
			return nil
		},
	}
}

func printTask(t *downloadstation.Task) {
	line := fmt.Sprintf("%s  %-12s %7s %5.0f%%  %s", t.ID, t.Status, t.HumanSize(), t.Progress(), t.Title)
	if speed := t.HumanSpeed(); speed != "" {
		line += "  " + speed
	}
	if eta := t.HumanTimeLeft(); eta != "" {
		line += "  eta " + eta
	}
	fmt.Println(line)
}

func printTaskDetail(t *downloadstation.Task) {
	printTask(t)
	fmt.Printf("  owner: %s  type: %s  ratio: %.2f\n", t.Username, t.Type, t.Ratio())

	if t.StatusExtra != nil && t.StatusExtra.ErrorDetail != "" {
		fmt.Printf("  error: %s\n", t.StatusExtra.ErrorDetail)
	}
	if t.Additional == nil {
		return
	}

	if d := t.Additional.Detail; d != nil {
		fmt.Printf("  destination: %s\n", d.Destination)
		fmt.Printf("  uri: %s\n", d.URI)
		fmt.Printf("  created: %s  peers: %d/%d\n", d.CreatedTime.Format(time.RFC3339), d.ConnectedPeers, d.TotalPeers)
	}
	for _, f := range t.Additional.File {
		fmt.Printf("  file: %s (%d/%d bytes)\n", f.Filename, f.SizeDownloaded, f.Size)
	}
	for _, tr := range t.Additional.Tracker {
		fmt.Printf("  tracker: %s (%s, %d seeds)\n", tr.URL, tr.Status, tr.Seeds)
	}
	for _, p := range t.Additional.Peer {
		fmt.Printf("  peer: %s (%s)\n", p.Address, p.Agent)
	}
}

func printOperation(op *downloadstation.TaskOperation) {
	if len(op.FailedTask) == 0 {
		fmt.Println("ok")
		return
	}
	for _, failed := range op.FailedTask {
		fmt.Printf("task %s failed: error %d\n", failed.ID, failed.Error)
	}
}
