package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Alia5/padmapper/mapping"
	"github.com/Alia5/padmapper/output"
)

// Emitter records every action sent to it. A non-nil Err is returned from
// Send after recording.
type Emitter struct {
	mu      sync.Mutex
	actions []output.Action
	Err     error
}

func (e *Emitter) Send(a output.Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = append(e.actions, a)
	return e.Err
}

// Sent returns a snapshot of the recorded actions.
func (e *Emitter) Sent() []output.Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]output.Action, len(e.actions))
	copy(out, e.actions)
	return out
}

func (e *Emitter) Reset() {
	e.mu.Lock()
	e.actions = nil
	e.mu.Unlock()
}

// WriteFiles creates files (name -> content) in a fresh temp dir and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// StaticLoader serves configurations by file base name. It counts loads per
// path so tests can assert nothing is loaded twice.
type StaticLoader struct {
	Configs map[string]*mapping.Configuration
	Loads   map[string]int
}

func NewStaticLoader(configs map[string]*mapping.Configuration) *StaticLoader {
	return &StaticLoader{Configs: configs, Loads: make(map[string]int)}
}

func (l *StaticLoader) Load(path string) (*mapping.Configuration, error) {
	l.Loads[path]++
	cfg, ok := l.Configs[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("no configuration for %s", path)
	}
	return cfg, nil
}
