package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State remembers selections between invocations: the user picked in the
// users view, and the last driver and program touched.
type State struct {
	SelectedUser string `yaml:"selected_user,omitempty"`
	LastDriver   string `yaml:"last_driver,omitempty"`
	LastProgram  string `yaml:"last_program,omitempty"`
}

// StatePath returns the state file that sits next to configPath.
func StatePath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "state.yaml")
}

// LoadState reads the state file. A missing file yields an empty State.
func LoadState(path string) (State, error) {
	var s State
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read state: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode state %s: %w", path, err)
	}
	return s, nil
}

// SaveState writes s to path.
func SaveState(path string, s State) error {
	return writeYAML(path, s)
}

// Update loads the state, applies fn and writes the result back.
func Update(path string, fn func(*State)) error {
	s, err := LoadState(path)
	if err != nil {
		return err
	}
	fn(&s)
	return SaveState(path, s)
}
