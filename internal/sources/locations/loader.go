package locations

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads and parses locations.yaml.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the locations file.
func (l *Loader) Load() ([]Entry, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse locations yaml: %w", err)
	}
	return file.Locations, nil
}
