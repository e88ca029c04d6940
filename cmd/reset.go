package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"neonlocal/internal/controller"
)

func newResetCmd() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the connected branch to its parent's state",
		Long: `Resets the branch the proxy is currently serving back to the state of its
parent branch. All changes made on the branch are discarded. The proxy keeps
running against the same branch; only its contents change.

Destructive. Asks for confirmation unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}

			state := app.controller.State()
			if !state.Connected() {
				return controller.ErrNotConnected
			}
			if !skipConfirm {
				fmt.Printf("Reset branch %s to its parent? All changes on it will be lost. [y/N]: ", state.CurrentBranchID)
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Println("Aborted")
					return nil
				}
			}

			if err := app.controller.ResetToParent(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Branch %s reset to parent\n", state.CurrentBranchID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
