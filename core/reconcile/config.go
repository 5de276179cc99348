package reconcile

import "time"

// Config holds the tunables for a sync run.
type Config struct {
	// Workers bounds the number of concurrent target mutations.
	Workers int `mapstructure:"workers" default:"10" validate:"min=1"`

	// Retries is the number of extra attempts after a transient failure.
	Retries int `mapstructure:"retries" default:"2" validate:"min=0"`

	// BackoffMS is the base backoff between retries, in milliseconds.
	// The delay doubles per attempt.
	BackoffMS int `mapstructure:"backoff_ms" default:"250" validate:"min=1"`

	// DefaultHostTemplate is applied to hosts that specify no templates.
	DefaultHostTemplate string `mapstructure:"default_host_template" default:"Network - Base"`
}

// Backoff returns the configured base backoff as a duration.
func (c Config) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}
