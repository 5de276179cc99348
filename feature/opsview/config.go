package opsview

import "time"

// Config holds the connection settings for the Opsview instance.
type Config struct {
	// URL is the instance base URL. A bare host is assumed https.
	URL string `mapstructure:"url" default:""`

	// Username and Password are exchanged for a session token on login.
	Username string `mapstructure:"username" default:""`
	Password string `mapstructure:"password" default:""`

	// TimeoutSeconds bounds a single REST request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" validate:"min=1"`
}

// Timeout returns the configured request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
