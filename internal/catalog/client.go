// Package catalog is the client for the Neon console API: organizations,
// projects, branches, databases, roles, endpoints, credentials, and the
// destructive reset-to-parent call. All reads are idempotent; the one write
// is never retried here.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://console.neon.tech/api/v2"

// ErrUnauthenticated reports a rejected credential. Callers use it to kick
// off a re-authentication flow instead of showing a generic failure.
var ErrUnauthenticated = errors.New("catalog: unauthenticated")

// APIError is any non-2xx console API response other than a 401.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("console API error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the Neon console API with a bearer credential.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a catalog client for the production console endpoint.
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a catalog client against a specific endpoint.
// Used by tests and by deployments pointed at a non-production console.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListOrgs returns the organizations the credential belongs to.
func (c *Client) ListOrgs(ctx context.Context) ([]Org, error) {
	var resp orgsResponse
	if err := c.get(ctx, "/users/me/organizations", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return resp.Organizations, nil
}

// ListProjects returns the projects in an organization.
func (c *Client) ListProjects(ctx context.Context, orgID string) ([]Project, error) {
	query := url.Values{}
	if orgID != "" {
		query.Set("org_id", orgID)
	}
	var resp projectsResponse
	if err := c.get(ctx, "/projects", query, &resp); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return resp.Projects, nil
}

// ListBranches returns the branches of a project.
func (c *Client) ListBranches(ctx context.Context, projectID string) ([]Branch, error) {
	var resp branchesResponse
	if err := c.get(ctx, "/projects/"+projectID+"/branches", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list branches for project %s: %w", projectID, err)
	}
	return resp.Branches, nil
}

// GetBranch returns a single branch, including its parent id.
func (c *Client) GetBranch(ctx context.Context, projectID, branchID string) (Branch, error) {
	var resp branchResponse
	if err := c.get(ctx, "/projects/"+projectID+"/branches/"+branchID, nil, &resp); err != nil {
		return Branch{}, fmt.Errorf("failed to get branch %s: %w", branchID, err)
	}
	return resp.Branch, nil
}

// ListDatabases returns the databases on a branch.
func (c *Client) ListDatabases(ctx context.Context, projectID, branchID string) ([]Database, error) {
	var resp databasesResponse
	if err := c.get(ctx, "/projects/"+projectID+"/branches/"+branchID+"/databases", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list databases for branch %s: %w", branchID, err)
	}
	return resp.Databases, nil
}

// ListRoles returns the Postgres roles on a branch.
func (c *Client) ListRoles(ctx context.Context, projectID, branchID string) ([]Role, error) {
	var resp rolesResponse
	if err := c.get(ctx, "/projects/"+projectID+"/branches/"+branchID+"/roles", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list roles for branch %s: %w", branchID, err)
	}
	return resp.Roles, nil
}

// GetBranchEndpoint returns the first compute endpoint serving a branch.
func (c *Client) GetBranchEndpoint(ctx context.Context, projectID, branchID string) (Endpoint, error) {
	var resp endpointsResponse
	if err := c.get(ctx, "/projects/"+projectID+"/branches/"+branchID+"/endpoints", nil, &resp); err != nil {
		return Endpoint{}, fmt.Errorf("failed to get endpoint for branch %s: %w", branchID, err)
	}
	if len(resp.Endpoints) == 0 {
		return Endpoint{}, fmt.Errorf("branch %s has no compute endpoint", branchID)
	}
	return resp.Endpoints[0], nil
}

// GetRolePassword reveals the password for a role on a branch.
func (c *Client) GetRolePassword(ctx context.Context, projectID, branchID, roleName string) (string, error) {
	path := "/projects/" + projectID + "/branches/" + branchID + "/roles/" + url.PathEscape(roleName) + "/reveal_password"
	var resp passwordResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to reveal password for role %s: %w", roleName, err)
	}
	return resp.Password, nil
}

// ResetBranchToParent discards the branch's data and restores it from its
// parent. Destructive and non-idempotent: never retried automatically.
func (c *Client) ResetBranchToParent(ctx context.Context, projectID, branchID string) error {
	path := "/projects/" + projectID + "/branches/" + branchID + "/reset_to_parent"
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("failed to reset branch %s to parent: %w", branchID, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	fullPath := path
	if len(query) > 0 {
		fullPath += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, fullPath, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: apiErrorMessage(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// apiErrorMessage extracts the console's error message, falling back to the
// raw body when it isn't the usual {"message": ...} shape.
func apiErrorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return strings.TrimSpace(string(body))
}
