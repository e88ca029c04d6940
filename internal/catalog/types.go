package catalog

// Org is an organization the authenticated user belongs to.
type Org struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project is a Neon project inside an organization.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OrgID    string `json:"org_id"`
	RegionID string `json:"region_id"`
}

// Branch is a copy-on-write database snapshot. ParentID is empty for root
// branches.
type Branch struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
	Default  bool   `json:"default"`
	Protected bool  `json:"protected"`
}

// Database is a database on a specific branch.
type Database struct {
	Name      string `json:"name"`
	OwnerName string `json:"owner_name"`
}

// Role is a Postgres role on a specific branch.
type Role struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
}

// Endpoint is the compute endpoint serving a branch.
type Endpoint struct {
	ID   string `json:"id"`
	Host string `json:"host"`
	Type string `json:"type"`
}

// Response envelopes used by the console API.

type orgsResponse struct {
	Organizations []Org `json:"organizations"`
}

type projectsResponse struct {
	Projects []Project `json:"projects"`
}

type branchesResponse struct {
	Branches []Branch `json:"branches"`
}

type branchResponse struct {
	Branch Branch `json:"branch"`
}

type databasesResponse struct {
	Databases []Database `json:"databases"`
}

type rolesResponse struct {
	Roles []Role `json:"roles"`
}

type endpointsResponse struct {
	Endpoints []Endpoint `json:"endpoints"`
}

type passwordResponse struct {
	Password string `json:"password"`
}
