// Package config loads and validates application configuration from
// environment variables (HERALD_ prefix) and an optional config file.
// Configuration is plain injected data: there are no hidden singletons.
package config
