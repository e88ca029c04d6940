package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"neonlocal/internal/config"
	"neonlocal/internal/connstring"
	"neonlocal/internal/controller"
)

func newConnectionStringCmd() *cobra.Command {
	var copyToClipboard bool
	var database string
	var role string

	cmd := &cobra.Command{
		Use:   "connection-string",
		Short: "Print the local connection string for the active proxy",
		Long: `Builds the connection string clients should use against the running
proxy. For the postgres driver this is a postgres:// URL with the role's
password fetched from the API; for the serverless driver it is the local
HTTP query endpoint.`,
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

			if database == "" {
				if len(state.Databases) == 0 {
					return fmt.Errorf("no databases known for branch %s", state.CurrentBranchID)
				}
				database = state.Databases[0]
			}
			if role == "" && len(state.Roles) > 0 {
				role = state.Roles[0]
			}

			var password string
			if state.Driver == config.DriverPostgres {
				sel := app.selections.Get()
				password, err = app.catalog.GetRolePassword(cmd.Context(), sel.ProjectID, state.CurrentBranchID, role)
				if err != nil {
					return fmt.Errorf("failed to fetch password for role %s: %w", role, err)
				}
			}

			cs, err := connstring.Build(state.Driver, role, password, database, state.HostPort)
			if err != nil {
				return err
			}

			if copyToClipboard {
				if err := clipboard.WriteAll(cs); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				fmt.Println("Connection string copied to clipboard")
				return nil
			}
			fmt.Println(cs)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Copy to the clipboard instead of printing")
	cmd.Flags().StringVar(&database, "database", "", "Database name (default: first database on the branch)")
	cmd.Flags().StringVar(&role, "role", "", "Role name (default: first role on the branch)")
	return cmd
}
