package config

// Config is the persisted configuration surface consumed by the rest of the
// application. It is loaded once at startup and treated as read-only: the
// controller reads it at operation time but never writes it back.
type Config struct {
	// APIKey is the Neon API key used for both the catalog client and the
	// proxy container environment.
	APIKey string `yaml:"apiKey"`

	// RefreshToken is the persisted OAuth refresh token. The token exchange
	// itself happens out of process; only the resulting credential matters
	// here.
	RefreshToken string `yaml:"refreshToken"`

	// DefaultDriver selects the wire protocol exposed locally when the user
	// has not chosen one explicitly: "postgres" or "serverless".
	DefaultDriver string `yaml:"defaultDriver"`

	// DeleteOnStop asks the proxy to delete an ephemeral branch when the
	// container shuts down gracefully.
	DeleteOnStop bool `yaml:"deleteOnStop"`

	// CallbackPort is the local port preference for the OAuth callback
	// listener. Consumed by the (external) auth flow, carried here so it
	// survives restarts alongside the rest of the configuration.
	CallbackPort int `yaml:"callbackPort"`

	// Image is the proxy container image reference.
	Image string `yaml:"image"`

	// HostPort is the local port the proxy publishes. Guest side is always
	// 5432.
	HostPort int `yaml:"hostPort"`
}
