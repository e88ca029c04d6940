package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Stop and remove the Neon Local proxy container",
		Long: `Stops the proxy container and removes it. The branch selection is kept,
so 'neonlocal connect' brings the same branch back. Safe to run when no
proxy is running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}

			if err := app.controller.Stop(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Disconnected")
			return nil
		},
	}
}
