package server

import "time"

// Config holds server configuration settings
type Config struct {
	Host           string        // Server host address
	Port           int           // Server port
	DatabasePath   string        // Path to the database file
	ReadTimeout    time.Duration // HTTP read timeout
	WriteTimeout   time.Duration // HTTP write timeout
	IdleTimeout    time.Duration // HTTP idle timeout
	MaxRequestSize int64         // Maximum request body size in bytes
	EnableCORS     bool          // Enable CORS middleware
	EnableLogging  bool          // Enable request logging
	EnableGraphQL  bool          // Enable GraphQL API endpoint

	// Users maps usernames to passwords for HTTP basic auth. Empty means
	// the server is open.
	Users map[string]string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:           "localhost",
		Port:           8080,
		DatabasePath:   "./hozon.db",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxRequestSize: 1 * 1024 * 1024, // 1MB, statements are small
		EnableCORS:     true,
		EnableLogging:  true,
		EnableGraphQL:  false,
	}
}
