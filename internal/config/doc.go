// Package config loads, normalizes, and validates sermoncast's TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/sermoncast, or a
// project-local sermoncast.toml), decodes the file over repository defaults,
// expands ~ paths, applies environment overrides for credentials and the
// playlist identifier, and rejects unusable values before any stage runs.
package config
