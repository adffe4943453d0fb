package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/padmapper/internal/configpaths"
	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/mapping/mapfile"
	"github.com/Alia5/padmapper/output"
)

type Check struct {
	Mapping string `arg:"" help:"Mapping file, or the name of one in the mappings directory"`

	Out io.Writer `kong:"-"`
}

// discard accepts and drops every action.
type discard struct{}

func (discard) Send(output.Action) error { return nil }

// Run is called by Kong when the check command is executed.
func (c *Check) Run(logger *slog.Logger) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	path := configpaths.ResolveMapping(c.Mapping)
	m, err := mapping.NewMapperFromFile(discard{}, path, mapfile.Loader{}, mapping.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "device: %s\n", m.InputName())
	for i, p := range m.Configs() {
		fmt.Fprintf(out, "%d: %s\n", i, p)
	}
	return nil
}
