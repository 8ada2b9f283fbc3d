package load

import "time"

// Config holds the session configuration.
type Config struct {
	// Logger receives intermediate retry failures and debug events
	// (optional; nil is silent)
	Logger Logger

	// Retries is the number of extra status-read attempts after the
	// first one fails
	Retries int

	// CommandDelay is an optional settle delay after every frame
	// write. Slow links at 9600 baud sometimes need one; default is
	// no delay.
	CommandDelay time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Retries: 2,
	}
}

// Option is a functional option for configuring a Load.
type Option func(*Config)

// WithLogger sets a logger for session events. Intermediate retry
// failures are reported through it; without a logger they are silent
// until the retry budget is exhausted.
//
// Example:
//
//	ld := load.New(device, 0, load.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithRetries sets the number of extra attempts UpdateStatus makes
// after a failed exchange. Zero disables retrying; negative values are
// ignored. Default is 2.
//
// Example:
//
//	ld := load.New(device, 0, load.WithRetries(5))
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries >= 0 {
			c.Retries = retries
		}
	}
}

// WithCommandDelay sets a settle delay applied after every frame
// write. Default is no delay.
//
// Example:
//
//	ld := load.New(device, 0, load.WithCommandDelay(20*time.Millisecond))
func WithCommandDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.CommandDelay = delay
		}
	}
}
