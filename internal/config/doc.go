// Package config loads, normalizes, and validates csmedia configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the CSMEDIA_INSTALL_DIR environment fallback. The
// Config type gathers where the vendor install lives, where cache databases
// are written, and how updates and logs behave.
package config
