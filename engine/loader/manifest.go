package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrEmptyManifest is returned when a manifest lists no textures.
var ErrEmptyManifest = errors.New("manifest lists no textures")

// Manifest lists the assets of a game. Texture i of the list becomes texture ID i.
type Manifest struct {
	Textures []TextureEntry `yaml:"textures"`
	Sounds   []SoundEntry   `yaml:"sounds"`
	Music    []SoundEntry   `yaml:"music"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// TextureEntry is one texture of the manifest.
type TextureEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Fallback is the "#rrggbb" or "#rrggbbaa" color of the placeholder used when Path cannot be loaded.
	Fallback string `yaml:"fallback"`
}

// SoundEntry is one sound or music track of the manifest.
type SoundEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// LoadManifest reads a YAML manifest. Relative asset paths are resolved against the manifest's directory.
//
// Parameters:
//   - path: the manifest file
//
// Returns:
//   - *Manifest: the parsed manifest
//   - error: an error if the file cannot be read or parsed
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := ParseManifest(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses YAML manifest data.
//
// Parameters:
//   - data: the YAML document
//   - dir: the directory relative asset paths are resolved against
//
// Returns:
//   - *Manifest: the parsed manifest
//   - error: a parse error, ErrEmptyManifest, or an error naming a duplicate or unnamed entry
func ParseManifest(data []byte, dir string) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Textures) == 0 {
		return nil, ErrEmptyManifest
	}
	m.dir = dir

	seen := make(map[string]bool)
	for i, t := range m.Textures {
		if t.Name == "" {
			return nil, fmt.Errorf("texture %d has no name", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate texture %q", t.Name)
		}
		seen[t.Name] = true
	}
	for _, list := range [][]SoundEntry{m.Sounds, m.Music} {
		for i, s := range list {
			if s.Name == "" || s.Path == "" {
				return nil, fmt.Errorf("sound %d needs a name and a path", i)
			}
		}
	}
	return m, nil
}

// Resolve returns path resolved against the manifest's directory.
func (m *Manifest) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.dir == "" {
		return path
	}
	return filepath.Join(m.dir, path)
}

// TextureIndex returns the index of the texture named name, or -1.
func (m *Manifest) TextureIndex(name string) int {
	for i, t := range m.Textures {
		if t.Name == name {
			return i
		}
	}
	return -1
}
