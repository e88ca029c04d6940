package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Catalog listing commands. Branch-scoped listings (databases, roles) use
// the branch the proxy is actually serving when connected, falling back to
// the selected branch otherwise.

func newOrgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List the organizations you belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			orgs, err := app.catalog.ListOrgs(cmd.Context())
			if err != nil {
				return err
			}

			w := newListWriter()
			fmt.Fprintln(w, "ID\tNAME")
			for _, org := range orgs {
				fmt.Fprintf(w, "%s\t%s\n", org.ID, org.Name)
			}
			return w.Flush()
		},
	}
}

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects in the selected organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			sel := app.selections.Get()
			if sel.OrgID == "" {
				return fmt.Errorf("no organization selected: run 'neonlocal select org <id>' first")
			}
			projects, err := app.catalog.ListProjects(cmd.Context(), sel.OrgID)
			if err != nil {
				return err
			}

			w := newListWriter()
			fmt.Fprintln(w, "ID\tNAME\tREGION")
			for _, project := range projects {
				fmt.Fprintf(w, "%s\t%s\t%s\n", project.ID, project.Name, project.RegionID)
			}
			return w.Flush()
		},
	}
}

func newBranchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List branches in the selected project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			sel := app.selections.Get()
			if sel.ProjectID == "" {
				return fmt.Errorf("no project selected: run 'neonlocal select project <id>' first")
			}
			branches, err := app.catalog.ListBranches(cmd.Context(), sel.ProjectID)
			if err != nil {
				return err
			}

			w := newListWriter()
			fmt.Fprintln(w, "ID\tNAME\tPARENT\tDEFAULT")
			for _, branch := range branches {
				def := ""
				if branch.Default {
					def = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", branch.ID, branch.Name, orDash(branch.ParentID), def)
			}
			return w.Flush()
		},
	}
}

func newDatabasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List databases on the active branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			projectID, branchID, err := activeBranchScope(app)
			if err != nil {
				return err
			}
			databases, err := app.catalog.ListDatabases(cmd.Context(), projectID, branchID)
			if err != nil {
				return err
			}

			w := newListWriter()
			fmt.Fprintln(w, "NAME\tOWNER")
			for _, db := range databases {
				fmt.Fprintf(w, "%s\t%s\n", db.Name, db.OwnerName)
			}
			return w.Flush()
		},
	}
}

func newRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List roles on the active branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context())
			if err != nil {
				return err
			}
			projectID, branchID, err := activeBranchScope(app)
			if err != nil {
				return err
			}
			roles, err := app.catalog.ListRoles(cmd.Context(), projectID, branchID)
			if err != nil {
				return err
			}

			w := newListWriter()
			fmt.Fprintln(w, "NAME\tPROTECTED")
			for _, role := range roles {
				protected := ""
				if role.Protected {
					protected = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\n", role.Name, protected)
			}
			return w.Flush()
		},
	}
}

// activeBranchScope resolves which (project, branch) branch-scoped listings
// target: the branch actually served while connected, the selected branch
// otherwise.
func activeBranchScope(app *application) (projectID, branchID string, err error) {
	sel := app.selections.Get()
	if sel.ProjectID == "" {
		return "", "", fmt.Errorf("no project selected: run 'neonlocal select project <id>' first")
	}

	state := app.controller.State()
	if state.Connected() {
		return sel.ProjectID, state.CurrentBranchID, nil
	}
	if sel.BranchID == "" {
		return "", "", fmt.Errorf("no branch selected and no proxy connected")
	}
	return sel.ProjectID, sel.BranchID, nil
}

func newListWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
