package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"neonlocal/internal/view"
)

func newConnectCmd() *cobra.Command {
	var branchID string
	var parentBranchID string
	var driver string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Start the Neon Local proxy for the selected branch",
		Long: `Starts the proxy container against the currently selected branch and
waits until it is serving connections on localhost.

The branch comes from the persisted selection ('neonlocal select branch')
unless overridden with --branch or --parent. With --parent the proxy creates
an ephemeral branch off the given parent for this session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if branchID != "" && parentBranchID != "" {
				return fmt.Errorf("--branch and --parent are mutually exclusive")
			}

			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}

			if branchID != "" {
				if _, err := app.selections.SetBranch(branchID); err != nil {
					return err
				}
			}
			if parentBranchID != "" {
				if _, err := app.selections.SetParentBranch(parentBranchID); err != nil {
					return err
				}
			}
			if driver != "" {
				if err := app.controller.SetDriver(cmd.Context(), driver); err != nil {
					return err
				}
			}

			sink := view.NewConsoleSink()
			sub := app.notifier.Subscribe()
			defer app.notifier.Unsubscribe(sub)
			go sink.Run(sub)

			if err := app.controller.Start(cmd.Context()); err != nil {
				return err
			}

			state := app.controller.State()
			fmt.Printf("Connected to branch %s (driver=%s) on localhost:%d\n",
				state.CurrentBranchID, state.Driver, state.HostPort)
			return nil
		},
	}

	cmd.Flags().StringVar(&branchID, "branch", "", "Connect to this existing branch id")
	cmd.Flags().StringVar(&parentBranchID, "parent", "", "Create an ephemeral branch off this parent branch id")
	cmd.Flags().StringVar(&driver, "driver", "", "Wire protocol: postgres or serverless")
	return cmd
}
