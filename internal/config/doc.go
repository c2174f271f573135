// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. YAML files are checked against an embedded
// JSON Schema before decoding. It exposes strongly typed server and deployment
// settings to the rest of the application.
package config
