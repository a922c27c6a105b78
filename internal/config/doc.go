// Package config loads and validates the application configuration from
// environment variables and an optional YAML file, and hands the rest of the
// application typed settings grouped by concern.
package config
