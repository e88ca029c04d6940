package config

const (
	// DriverPostgres exposes the native Postgres wire protocol locally.
	DriverPostgres = "postgres"
	// DriverServerless exposes the HTTP-based serverless protocol locally.
	DriverServerless = "serverless"

	// DefaultImage is the proxy container image used when none is configured.
	DefaultImage = "neondatabase/neon_local:latest"

	// DefaultHostPort is the local port the proxy publishes by default.
	DefaultHostPort = 5432

	// DefaultCallbackPort is the local port preference for the OAuth
	// callback listener.
	DefaultCallbackPort = 9219
)

// GetDefaultConfig returns the baseline configuration that user and project
// files are layered on top of.
func GetDefaultConfig() Config {
	return Config{
		DefaultDriver: DriverPostgres,
		DeleteOnStop:  true,
		CallbackPort:  DefaultCallbackPort,
		Image:         DefaultImage,
		HostPort:      DefaultHostPort,
	}
}
