// Package config loads, normalizes, and validates ytscribe configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: fetch defaults, tool timeouts, proxy file locations, hosted
// API endpoints, cache placement, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
