// Package config loads, normalizes, and validates deepart configuration.
//
// Settings come from a TOML file (explicit path, ~/.config/deepart/config.toml
// or ./deepart.toml), then DEEPART_* environment variables, and finally CLI
// flags applied by the caller. The Config type centralizes every knob the CLI
// and the conversion pipeline need: API endpoint and polling cadence, input
// discovery, batch limits, marker persistence and logging.
package config
