package mapping

// Configuration is one mapping file: the device it applies to, the axis
// boundaries and the three binding tables.
type Configuration struct {
	// DeviceName is the evdev name of the controller this configuration is for.
	DeviceName string
	Thresholds []AxisThresholdEntry
	// ChordInputs seeds the chord universe with inputs that should block
	// chords even though no chord names them.
	ChordInputs []Input
	Chords      []ChordEntry
	Modifiers   []ModifierEntry
	Mouse       []MouseEntry
}

// Loader reads a configuration from a path.
type Loader interface {
	Load(path string) (*Configuration, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*Configuration, error)

func (f LoaderFunc) Load(path string) (*Configuration, error) { return f(path) }
