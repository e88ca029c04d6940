package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"neonlocal/internal/controller"
	"neonlocal/internal/selection"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the proxy connection state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}

			printStatus(app.controller.State(), app.selections.Get())
			return nil
		},
	}
}

func printStatus(state controller.ConnectionState, sel selection.Selection) {
	fmt.Printf("State:        %s\n", state.State)
	if state.Err != nil {
		fmt.Printf("Last error:   %v\n", state.Err)
	}
	fmt.Printf("Organization: %s\n", orDash(sel.OrgID))
	fmt.Printf("Project:      %s\n", orDash(sel.ProjectID))

	if state.Connected() {
		fmt.Printf("Branch:       %s\n", state.CurrentBranchID)
		if sel.ConnectionType == selection.ConnectionTypeNew {
			fmt.Printf("Parent:       %s (ephemeral session branch)\n", sel.ParentBranchID)
		}
		fmt.Printf("Driver:       %s\n", state.Driver)
		fmt.Printf("Endpoint:     localhost:%d\n", state.HostPort)
		fmt.Printf("Databases:    %s\n", orDash(strings.Join(state.Databases, ", ")))
		fmt.Printf("Roles:        %s\n", orDash(strings.Join(state.Roles, ", ")))
		return
	}

	if sel.ConnectionType == selection.ConnectionTypeNew {
		fmt.Printf("Branch:       (new, off parent %s)\n", orDash(sel.ParentBranchID))
	} else {
		fmt.Printf("Branch:       %s\n", orDash(sel.BranchID))
	}
	fmt.Printf("Driver:       %s\n", orDash(sel.Driver))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
