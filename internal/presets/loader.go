package presets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads presets.yaml from disk.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Load reads and parses the presets file. Environment references such as
// ${PASSGEN_WIFI_LENGTH} are expanded before parsing.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read presets file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return File{}, fmt.Errorf("failed to parse presets yaml: %w", err)
	}
	return f, nil
}
