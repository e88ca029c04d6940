// Package mcptools exposes the command surface as MCP tools so agents and
// IDEs can drive the proxy over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"neonlocal/internal/connstring"
	"neonlocal/internal/controller"
	"neonlocal/internal/selection"
)

// Lifecycle is the slice of the controller the tools drive.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	SetDriver(ctx context.Context, driver string) error
	ResetToParent(ctx context.Context) error
	State() controller.ConnectionState
}

// PasswordFetcher resolves a role's password for connection strings.
type PasswordFetcher interface {
	GetRolePassword(ctx context.Context, projectID, branchID, roleName string) (string, error)
}

// NewServer builds an MCP server with the proxy tools registered.
func NewServer(version string, lifecycle Lifecycle, selections *selection.Store, passwords PasswordFetcher) *server.MCPServer {
	s := server.NewMCPServer(
		"neonlocal",
		version,
	)
	RegisterTools(s, lifecycle, selections, passwords)
	return s
}

// RegisterTools wires the proxy command surface onto s.
func RegisterTools(s *server.MCPServer, lifecycle Lifecycle, selections *selection.Store, passwords PasswordFetcher) {
	s.AddTool(
		mcp.NewTool("proxy_start",
			mcp.WithDescription("Start the Neon Local proxy container for the currently selected branch"),
		),
		startHandler(lifecycle),
	)

	s.AddTool(
		mcp.NewTool("proxy_stop",
			mcp.WithDescription("Stop and remove the Neon Local proxy container; the branch selection is preserved"),
		),
		stopHandler(lifecycle),
	)

	s.AddTool(
		mcp.NewTool("proxy_status",
			mcp.WithDescription("Report the proxy connection state, active branch, driver, databases, and roles"),
		),
		statusHandler(lifecycle),
	)

	s.AddTool(
		mcp.NewTool("branch_reset",
			mcp.WithDescription("Reset the connected branch to its parent's state. Destructive: discards changes on the branch."),
		),
		resetHandler(lifecycle),
	)

	s.AddTool(
		mcp.NewTool("select_org",
			mcp.WithDescription("Select the Neon organization. Clears any project and branch selection."),
			mcp.WithString("org_id", mcp.Required(), mcp.Description("Organization id")),
		),
		selectOrgHandler(selections),
	)

	s.AddTool(
		mcp.NewTool("select_project",
			mcp.WithDescription("Select the Neon project. Clears any branch selection."),
			mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		),
		selectProjectHandler(selections),
	)

	s.AddTool(
		mcp.NewTool("select_branch",
			mcp.WithDescription("Select the branch to connect to. Pass parent=true to create an ephemeral branch off the given branch instead."),
			mcp.WithString("branch_id", mcp.Required(), mcp.Description("Branch id (or parent branch id with parent=true)")),
			mcp.WithBoolean("parent", mcp.Description("Treat branch_id as the parent of a new ephemeral branch")),
		),
		selectBranchHandler(selections),
	)

	s.AddTool(
		mcp.NewTool("set_driver",
			mcp.WithDescription("Set the local wire protocol: postgres or serverless. Restarts the proxy if connected."),
			mcp.WithString("driver", mcp.Required(), mcp.Description("postgres or serverless")),
		),
		setDriverHandler(lifecycle),
	)

	s.AddTool(
		mcp.NewTool("connection_string",
			mcp.WithDescription("Build the local connection string for the active proxy"),
			mcp.WithString("database", mcp.Description("Database name, defaults to the first database on the branch")),
			mcp.WithString("role", mcp.Description("Role name, defaults to the first role on the branch")),
		),
		connectionStringHandler(lifecycle, selections, passwords),
	)
}

func startHandler(lifecycle Lifecycle) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := lifecycle.Start(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("start failed: %v", err)), nil
		}
		state := lifecycle.State()
		return mcp.NewToolResultText(fmt.Sprintf("connected to branch %s on localhost:%d", state.CurrentBranchID, state.HostPort)), nil
	}
}

func stopHandler(lifecycle Lifecycle) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := lifecycle.Stop(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stop failed: %v", err)), nil
		}
		return mcp.NewToolResultText("disconnected"), nil
	}
}

func statusHandler(lifecycle Lifecycle) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		state := lifecycle.State()
		payload := map[string]interface{}{
			"state":     string(state.State),
			"branch_id": state.CurrentBranchID,
			"driver":    state.Driver,
			"host_port": state.HostPort,
			"databases": state.Databases,
			"roles":     state.Roles,
		}
		if state.Err != nil {
			payload["error"] = state.Err.Error()
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal status: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func resetHandler(lifecycle Lifecycle) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := lifecycle.ResetToParent(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
		}
		return mcp.NewToolResultText("branch reset to parent"), nil
	}
}

func selectOrgHandler(selections *selection.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orgID, ok := request.GetArguments()["org_id"].(string)
		if !ok || orgID == "" {
			return mcp.NewToolResultError("org_id is required"), nil
		}
		if _, err := selections.SetOrg(orgID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to persist selection: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("organization %s selected", orgID)), nil
	}
}

func selectProjectHandler(selections *selection.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, ok := request.GetArguments()["project_id"].(string)
		if !ok || projectID == "" {
			return mcp.NewToolResultError("project_id is required"), nil
		}
		if _, err := selections.SetProject(projectID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to persist selection: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("project %s selected", projectID)), nil
	}
}

func selectBranchHandler(selections *selection.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		branchID, ok := request.GetArguments()["branch_id"].(string)
		if !ok || branchID == "" {
			return mcp.NewToolResultError("branch_id is required"), nil
		}
		parent, _ := request.GetArguments()["parent"].(bool)

		var err error
		if parent {
			_, err = selections.SetParentBranch(branchID)
		} else {
			_, err = selections.SetBranch(branchID)
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to persist selection: %v", err)), nil
		}
		if parent {
			return mcp.NewToolResultText(fmt.Sprintf("will create an ephemeral branch off %s on next start", branchID)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("branch %s selected", branchID)), nil
	}
}

func setDriverHandler(lifecycle Lifecycle) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		driver, ok := request.GetArguments()["driver"].(string)
		if !ok || driver == "" {
			return mcp.NewToolResultError("driver is required"), nil
		}
		if err := lifecycle.SetDriver(ctx, driver); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("driver change failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("driver set to %s", driver)), nil
	}
}

func connectionStringHandler(lifecycle Lifecycle, selections *selection.Store, passwords PasswordFetcher) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		state := lifecycle.State()
		if !state.Connected() {
			return mcp.NewToolResultError("no active connection"), nil
		}

		database, _ := request.GetArguments()["database"].(string)
		if database == "" {
			if len(state.Databases) == 0 {
				return mcp.NewToolResultError("no databases known for the active branch"), nil
			}
			database = state.Databases[0]
		}
		role, _ := request.GetArguments()["role"].(string)
		if role == "" && len(state.Roles) > 0 {
			role = state.Roles[0]
		}

		var password string
		if state.Driver == "postgres" {
			sel := selections.Get()
			var err error
			password, err = passwords.GetRolePassword(ctx, sel.ProjectID, state.CurrentBranchID, role)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to fetch password for role %s: %v", role, err)), nil
			}
		}

		cs, err := connstring.Build(state.Driver, role, password, database, state.HostPort)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(cs), nil
	}
}
