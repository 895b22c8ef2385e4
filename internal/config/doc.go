// Package config loads, normalizes, and validates PiMO configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PIMO_WEBHOOK_URL. The Config type centralizes every knob the CLI and the
// daemon need: rotation list and timeouts, sync-window limits, feed relay
// sources, splash data sources, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
