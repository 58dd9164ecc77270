// Package config provides environment-driven configuration for the library
// lending service: the Postgres DSN and pool settings (for all three
// supported connection flavors), the HTTP listen address, and the card seed
// data loaded at process start.
package config
