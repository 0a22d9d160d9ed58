// Package manifest holds typed records for the already-parsed
// catapult.toml manifest documents the core consumes. This package does
// not parse TOML itself; manifest/toolchain parsing is an out-of-scope
// collaborator per the core's own contract. ReadFile below decodes the
// CLI's own JSON sidecar form of an already-parsed manifest, which is as
// far as this module reaches towards the real catapult.toml grammar.
package manifest

import (
	"encoding/json"
	"os"
)

// A Manifest describes one project's package metadata and declared
// dependencies.
type Manifest struct {
	Package      PackageInfo                      `json:"package"`
	Dependencies map[string]DependencyRequirement `json:"dependencies"`
}

// PackageInfo is the `[package]` section of a manifest.
type PackageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// A DependencyRequirement is one entry of a manifest's `[dependencies]`
// table.
type DependencyRequirement struct {
	Version  string `json:"version"`
	Registry string `json:"registry"`
	Channel  string `json:"channel"`
}

// ReadFile decodes a project's already-parsed manifest record from path.
// Catapult's own manifest DSL (catapult.toml) is parsed upstream of this
// module; this reads the plain JSON shape that upstream step is expected
// to hand the CLI.
func ReadFile(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// DependencyNames returns the names of a manifest's declared dependencies,
// in no particular order.
func (m Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	return names
}
