package server

// PlaceholderRootID is the value shipped in .env.example; a root id equal to
// this must be treated as unconfigured.
const PlaceholderRootID = "INSERT_YOUR_ROOT_NODE_ID"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
}
