package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// EnvConfigDir overrides the configuration directory when set.
	EnvConfigDir = "PADMAPPER_CONFIG"
	// EnvSettings names a settings file, like --config.
	EnvSettings = "PADMAPPER_SETTINGS"
)

// DefaultConfigDir returns the platform-specific configuration directory for padmapper.
func DefaultConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, "padmapper"), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "padmapper"), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", "padmapper"), nil
		}
		return "", errors.New("HOME not set")
	}
}

// MappingDir is where named mapping files live.
func MappingDir() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mappings"), nil
}

// ResolveMapping returns name itself when it names an existing file, otherwise
// the first existing name[.json|.yaml|.yml|.toml] in the mapping directory.
// The input is returned unchanged when nothing matches so the caller reports
// the name as given.
func ResolveMapping(name string) string {
	if _, err := os.Stat(name); err == nil {
		return name
	}
	dir, err := MappingDir()
	if err != nil {
		return name
	}
	candidates := []string{filepath.Join(dir, name)}
	if filepath.Ext(name) == "" {
		for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
			candidates = append(candidates, filepath.Join(dir, name+ext))
		}
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return name
}

// DefaultNamedConfigPath returns the default config file path for the given format and base name.
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	ext := "json"
	switch format {
	case "yaml", "yml":
		ext = "yaml"
	case "toml":
		ext = "toml"
	}
	return filepath.Join(dir, baseName+"."+ext), nil
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// ConfigCandidatePaths builds candidate paths for config files per format.
// If userPath is provided, it is prioritized and routed to the matching loader by extension.
func ConfigCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }
	addBases := func(dir string, bases ...string) {
		for _, base := range bases {
			add(&jsonPaths, filepath.Join(dir, base+".json"))
			add(&yamlPaths, filepath.Join(dir, base+".yaml"))
			add(&yamlPaths, filepath.Join(dir, base+".yml"))
			add(&tomlPaths, filepath.Join(dir, base+".toml"))
		}
	}

	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			add(&yamlPaths, userPath)
		case ".toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	if wd, err := os.Getwd(); err == nil {
		addBases(wd, "padmapper")
	}
	if dir, err := DefaultConfigDir(); err == nil {
		addBases(dir, "config", "padmapper")
	}
	if runtime.GOOS != "windows" {
		addBases("/etc/padmapper", "config")
	}
	return
}

// SettingsFromArgs finds the --config value in raw arguments, before kong
// parses them, falling back to EnvSettings.
func SettingsFromArgs(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv(EnvSettings)
}
