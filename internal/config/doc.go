// Package config loads and validates the registry's settings from defaults,
// an optional YAML file and CONFHUB_ environment variables.
package config
