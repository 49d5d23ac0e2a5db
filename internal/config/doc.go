// Package config loads, normalizes, and validates OceanEye configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OCEANEYE_CATALOG_URL. The Config type centralizes every knob the CLI and the
// local API server need: the catalog endpoint, digest algorithm, history
// database, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
