// Package config loads, validates, and normalizes the lorestream TOML
// configuration.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/lorestream/config.toml, then ./lorestream.toml. Missing files
// yield the repository defaults so `lorestream run` works against a bare
// assets directory.
package config
