// Package config loads, validates, and defaults the fileforge TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/fileforge, or a
// project-local fileforge.toml), decodes it over Default(), expands and
// normalizes path fields, and validates the result. The embedded
// sample_config.toml documents every setting and backs `fileforge config init`.
package config
