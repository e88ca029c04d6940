// Package connstring renders the local connection string for a running
// proxy. The shape depends on the driver: the native protocol gets a
// postgres URL against localhost, the serverless driver gets the local HTTP
// query endpoint.
package connstring

import (
	"fmt"
	"net/url"

	"neonlocal/internal/config"
)

// Build renders the connection string for the given driver. role and
// password may be empty for the serverless form, which authenticates via
// the proxy itself.
func Build(driver, role, password, database string, port int) (string, error) {
	if database == "" {
		return "", fmt.Errorf("a database name is required")
	}
	switch driver {
	case config.DriverPostgres:
		if role == "" {
			return "", fmt.Errorf("a role is required for the postgres driver")
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(role, password),
			Host:     fmt.Sprintf("localhost:%d", port),
			Path:     "/" + database,
			RawQuery: "sslmode=no-verify",
		}
		return u.String(), nil
	case config.DriverServerless:
		return fmt.Sprintf("http://localhost:%d/sql", port), nil
	default:
		return "", fmt.Errorf("unknown driver %q", driver)
	}
}
