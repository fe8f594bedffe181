package composition

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/videocanvas/internal/system"
)

// DefaultDir: куда CLI по умолчанию смотрит за композициями
var DefaultDir = filepath.Join("input", "compositions")

// Write writes a composition to a YAML file
func Write(c *Composition, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Read reads a composition from a YAML file and normalizes it
func Read(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Composition
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := c.Normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// GeneratePath creates a timestamped composition filename in dir
func GeneratePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("composition_%s.yaml", timestamp))
}

// FindLatest finds the most recent composition file in dir
func FindLatest(dir string) (string, error) {
	return system.FindLatest(dir, system.CompositionExts...)
}
