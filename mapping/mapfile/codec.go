package mapfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/padmapper/mapping"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Format is a mapping file encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ParseFormat accepts json, yaml, yml or toml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// FormatFromPath picks the format from the file extension; files without a
// recognised extension are JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return JSON
}

// Ext returns the canonical extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Decode reads one mapping file. Unknown fields are rejected in every format.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("empty mapping file")
			}
			return nil, err
		}
	case TOML:
		if err := toml.NewDecoder(r).Strict(true).Decode(&f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return &f, nil
}

// Encode writes f in the given format.
func Encode(w io.Writer, format Format, f *File) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Order(toml.OrderPreserve).Encode(f)
	}
	return fmt.Errorf("unsupported format: %s", format)
}

// Load reads the mapping file at path, choosing the format by extension.
func Load(path string) (*mapping.Configuration, error) {
	return Loader{}.Load(path)
}

// Loader implements mapping.Loader. A zero Format picks the format from each
// file's extension.
type Loader struct {
	Format Format
}

func (l Loader) Load(path string) (*mapping.Configuration, error) {
	format := l.Format
	if format == "" {
		format = FormatFromPath(path)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Decode(fh, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg, err := f.Configuration()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes cfg in the given format.
func Marshal(cfg *mapping.Configuration, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, format, FromConfiguration(cfg)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path in the format named by its extension.
func Save(path string, cfg *mapping.Configuration) error {
	data, err := Marshal(cfg, FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
