// Package config provides configuration structures and utilities for
// privacyscan. It defines the runtime options set by CLI flags, the
// optional .privacyscan YAML file (label thresholds and per-site settings),
// and the XDG directories used for the database.
package config
