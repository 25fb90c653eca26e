package driver

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/rbrinfo/rbrinfo/internal/rerr"
)

// Manifest is the slice of the package manifest the driver needs:
// the package name and its buildable targets
type Manifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Lib *struct {
		Name string `toml:"name"`
	} `toml:"lib"`
	Bin []struct {
		Name string `toml:"name"`
		Path string `toml:"path"`
	} `toml:"bin"`
}

// Target is one buildable target of kind bin or lib
type Target struct {
	Kind string // "bin" | "lib"
	Name string
}

// LoadManifest reads and decodes the package manifest in dir. A
// missing or corrupted manifest is fatal.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "Cargo.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.Newf(rerr.DRV001, "manifest %s: %v", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, rerr.Newf(rerr.DRV001, "manifest %s: %v", path, err)
	}
	if m.Package.Name == "" {
		return nil, rerr.Newf(rerr.DRV001, "manifest %s: missing package name", path)
	}
	return &m, nil
}

// Targets returns the bin and lib targets of the package. A package
// with neither an explicit lib section nor bins still builds its
// implicit lib target when src/lib.rs exists.
func (m *Manifest) Targets(dir string) []Target {
	var targets []Target
	if m.Lib != nil {
		name := m.Lib.Name
		if name == "" {
			name = m.Package.Name
		}
		targets = append(targets, Target{Kind: "lib", Name: name})
	} else if _, err := os.Stat(filepath.Join(dir, "src", "lib.rs")); err == nil {
		targets = append(targets, Target{Kind: "lib", Name: m.Package.Name})
	}
	for _, b := range m.Bin {
		targets = append(targets, Target{Kind: "bin", Name: b.Name})
	}
	if len(m.Bin) == 0 {
		if _, err := os.Stat(filepath.Join(dir, "src", "main.rs")); err == nil {
			targets = append(targets, Target{Kind: "bin", Name: m.Package.Name})
		}
	}
	return targets
}
