package config

import "github.com/Alia5/padmapper/internal/cmd"

// CLI is the root kong command tree.
type CLI struct {
	Log struct {
		Level     string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"PADMAPPER_LOG_LEVEL"`
		File      string `help:"Also write logs to this file" env:"PADMAPPER_LOG_FILE"`
		TraceFile string `help:"Write every input event, emitted action and configuration switch to this file" env:"PADMAPPER_LOG_TRACE_FILE"`
	} `embed:"" prefix:"log."`

	Config string `help:"Path to a padmapper.json|yaml|toml settings file" type:"path" env:"PADMAPPER_SETTINGS"`

	Run     cmd.Run           `cmd:"" help:"Map a controller to keyboard and mouse output" default:"withargs"`
	Check   cmd.Check         `cmd:"" help:"Load a mapping and every configuration it links to"`
	Preset  cmd.Preset        `cmd:"" help:"Write a built-in mapping preset"`
	Devices cmd.Devices       `cmd:"" help:"List input devices"`
	Events  cmd.Events        `cmd:"" help:"Print normalized events of an input device"`
	Cfg     cmd.ConfigCommand `cmd:"" name:"config" help:"Settings file helpers"`
}
