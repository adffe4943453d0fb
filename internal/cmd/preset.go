package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Alia5/padmapper/internal/configpaths"
	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/mapping/mapfile"
)

// Preset writes a built-in mapping together with every preset it switches to,
// so the written set loads as one configuration graph.
type Preset struct {
	Name   string `arg:"" help:"Preset name (joycon, joycon-blank, joycon-mouse, pro, pro-blank)"`
	Output string `arg:"" optional:"" help:"Destination file; defaults to the mappings directory" type:"path"`
	Format string `help:"Format used when no destination is given" enum:"json,yaml,toml" default:"json"`
	Force  bool   `help:"Overwrite existing files"`

	Out io.Writer `kong:"-"`
}

// Run is called by Kong when the preset command is executed.
func (p *Preset) Run(logger *slog.Logger) error {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}

	dest := p.Output
	if dest == "" {
		format, err := mapfile.ParseFormat(p.Format)
		if err != nil {
			return err
		}
		dir, err := configpaths.MappingDir()
		if err != nil {
			return fmt.Errorf("failed to resolve mappings directory: %w", err)
		}
		dest = filepath.Join(dir, p.Name+format.Ext())
	}
	dir := filepath.Dir(dest)
	ext := filepath.Ext(dest)

	// The root file may be renamed; links back to it follow the new name.
	rootLink := p.Name + ext
	var paths []string
	files := map[string]*mapping.Configuration{}
	queue := []string{p.Name}
	for i := 0; i < len(queue); i++ {
		name := queue[i]
		cfg, err := mapfile.Preset(name, ext)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, name+ext)
		if i == 0 {
			target = dest
		}
		for _, linked := range switchTargets(cfg) {
			base := strings.TrimSuffix(filepath.Base(linked), ext)
			if !slices.Contains(queue, base) {
				queue = append(queue, base)
			}
		}
		relink(cfg, rootLink, filepath.Base(dest))
		paths = append(paths, target)
		files[target] = cfg
	}

	if !p.Force {
		for path := range files {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s exists; use --force to overwrite", path)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	for _, path := range paths {
		if err := mapfile.Save(path, files[path]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("wrote preset", "path", path)
		fmt.Fprintln(out, path)
	}
	return nil
}

func switchTargets(cfg *mapping.Configuration) []string {
	var out []string
	add := func(a mapping.Action) {
		if sw, ok := a.(mapping.SwitchConfig); ok {
			out = append(out, sw.Path)
		}
	}
	for _, c := range cfg.Chords {
		add(c.Action)
	}
	for _, m := range cfg.Modifiers {
		add(m.Action)
	}
	return out
}

func relink(cfg *mapping.Configuration, from, to string) {
	if from == to {
		return
	}
	for i, c := range cfg.Chords {
		if sw, ok := c.Action.(mapping.SwitchConfig); ok && sw.Path == from {
			cfg.Chords[i].Action = mapping.SwitchConfig{Path: to}
		}
	}
	for i, m := range cfg.Modifiers {
		if sw, ok := m.Action.(mapping.SwitchConfig); ok && sw.Path == from {
			cfg.Modifiers[i].Action = mapping.SwitchConfig{Path: to}
		}
	}
}
