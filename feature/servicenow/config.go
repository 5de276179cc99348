package servicenow

import "time"

// Config holds the connection settings for the ServiceNow instance.
type Config struct {
	// URL is the instance base URL, e.g. https://dev85142.service-now.com.
	URL string `mapstructure:"url" default:""`

	// Username and Password authenticate against the Table API.
	Username string `mapstructure:"username" default:""`
	Password string `mapstructure:"password" default:""`

	// PageSize is the sysparm_limit used while paginating.
	PageSize int `mapstructure:"page_size" default:"100" validate:"min=1,max=10000"`

	// TimeoutSeconds bounds a single Table API request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" validate:"min=1"`
}

// Timeout returns the configured request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
