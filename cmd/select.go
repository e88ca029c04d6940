package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSelectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the organization, project, branch, or driver",
		Long: `Mutates the persisted selection used by 'neonlocal connect'. Selecting an
organization clears the project and branch; selecting a project clears the
branch. Selections never start or stop the proxy by themselves, except for
a driver change while connected, which restarts the proxy with the new
driver.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "org <org-id>",
		Short: "Select the organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.selections.SetOrg(args[0]); err != nil {
				return err
			}
			fmt.Printf("Organization %s selected (project and branch cleared)\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "project <project-id>",
		Short: "Select the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := app.selections.SetProject(args[0]); err != nil {
				return err
			}
			fmt.Printf("Project %s selected (branch cleared)\n", args[0])
			return nil
		},
	})

	branchCmd := &cobra.Command{
		Use:   "branch <branch-id>",
		Short: "Select the branch to connect to",
		Long: `Selects an existing branch, or with --parent marks the given branch as the
parent of a new ephemeral branch created on the next connect. Changing the
branch does not restart a running proxy; disconnect and connect to switch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			parent, _ := cmd.Flags().GetBool("parent")
			if parent {
				if _, err := app.selections.SetParentBranch(args[0]); err != nil {
					return err
				}
				fmt.Printf("Will create an ephemeral branch off %s on next connect\n", args[0])
				return nil
			}
			if _, err := app.selections.SetBranch(args[0]); err != nil {
				return err
			}
			fmt.Printf("Branch %s selected\n", args[0])
			return nil
		},
	}
	branchCmd.Flags().Bool("parent", false, "Treat the id as the parent of a new ephemeral branch")
	cmd.AddCommand(branchCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "driver <postgres|serverless>",
		Short: "Select the local wire protocol",
		Long: `Sets the driver the proxy exposes locally. If a proxy is currently
connected it is restarted with the new driver in one step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.controller.SetDriver(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Driver set to %s\n", args[0])
			return nil
		},
	})

	return cmd
}
