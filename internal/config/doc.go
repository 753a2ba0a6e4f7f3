// Package config provides configuration structures and utilities for tagbalance.
// It defines the options collected from CLI flags, the optional YAML
// configuration file (.tagbalance), and the XDG directories used for the
// history database.
package config
