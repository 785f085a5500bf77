package config

import "time"

// ServerConfig holds configuration for the Codelab backend server.
type ServerConfig struct {
	Addr        string        // Listen address (default ":8080")
	LogLevel    string        // Log level: debug, info, warn, error
	LogFormat   string        // Log format: text, json
	DBPath      string        // SQLite database path (":memory:" for testing)
	ToolURL     string        // Public URL the launch redirect sends students to
	AuthURL     string        // Platform OIDC auth endpoint for login hand-off
	Issuers     []string      // Recognized platform issuers (soft check)
	SessionTTL  time.Duration // Lifetime of minted launch sessions
	EvalTimeout time.Duration // Time limit per evaluated submission
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:        ":8080",
		LogLevel:    "info",
		LogFormat:   "text",
		ToolURL:     "http://localhost:8080/",
		SessionTTL:  24 * time.Hour,
		EvalTimeout: 10 * time.Second,
	}
}

// ToolConfig holds configuration for the tool-side launch client.
type ToolConfig struct {
	APIBaseURL     string        // Backend base URL for /api/me and /api/grade
	CredentialPath string        // Single-slot credential file ("" for default)
	Timeout        time.Duration // Bound on each backend call
}

// DefaultToolConfig returns sensible defaults.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{
		APIBaseURL: "http://localhost:8080",
		Timeout:    10 * time.Second,
	}
}
