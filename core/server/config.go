package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	// If empty, the API is left unprotected (local development).
	ApiKey string `mapstructure:"api_key" default:""`
	// Env selects the deployment environment (development, staging, production).
	Env string `mapstructure:"env" default:"production"`
}

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// IsValidEnv checks if the configured environment is valid.
func (c Config) IsValidEnv() bool {
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		return true
	default:
		return false
	}
}

// IsDevelopment reports whether the server runs in development mode.
// Only development deployments may use the simulated clock offset.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}
