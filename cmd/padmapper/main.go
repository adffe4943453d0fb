package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/padmapper/internal/config"
	"github.com/Alia5/padmapper/internal/configpaths"
	"github.com/Alia5/padmapper/internal/log"
	"github.com/Alia5/padmapper/mapping"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(configpaths.SettingsFromArgs(os.Args[1:]))

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("padmapper"),
		kong.Description("Map game controller chords, modifiers and sticks to keyboard and mouse output"),
		kong.UsageOnError(),
		// Settings files in priority order; flags and env override them.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closers, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	trace, traceFile := setupTrace(logger, cli.Log.Level, cli.Log.TraceFile)
	if traceFile != nil {
		closers = append(closers, traceFile)
	}

	ctx.Bind(logger)
	ctx.BindTo(trace, (*mapping.Observer)(nil))

	err = ctx.Run()
	for _, c := range closers {
		_ = c.Close()
	}
	ctx.FatalIfErrorf(err)
}

// setupTrace picks the activity observer: a trace file when one is named,
// the logger at trace level, otherwise nothing.
func setupTrace(logger *slog.Logger, level, file string) (mapping.Observer, io.Closer) {
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open trace file", "file", file, "error", err)
			return mapping.Observers{}, nil
		}
		return log.NewTrace(f), f
	}
	if log.ParseLevel(level) <= log.LevelTrace {
		return log.SlogTrace{Logger: logger}, nil
	}
	return mapping.Observers{}, nil
}
