// Package toolchainrecord decodes the already-parsed toolchain document the
// CLI hands to the core: compiler/linker/archiver identities plus the set
// of named flag profiles. Catapult never parses a toolchain file's native
// format itself (spec §1's out-of-scope list); this package's only job is
// turning the CLI's JSON sidecar form of that record into a core.Toolchain.
package toolchainrecord

import (
	"encoding/json"
	"os"

	"github.com/catapult-build/catapult/src/core"
)

// A tool is the wire shape of one core.CompilerTool entry.
type tool struct {
	Path    string `json:"path"`
	ID      string `json:"id"`
	Version string `json:"version"`
}

// A profile is the wire shape of one core.Profile entry.
type profile struct {
	CFlags    []string `json:"cflags"`
	CxxFlags  []string `json:"cxxflags"`
	AsmFlags  []string `json:"asmflags"`
	LinkFlags []string `json:"link_flags"`
}

// A record is the on-disk JSON shape read by ReadFile.
type record struct {
	CC       tool               `json:"cc"`
	Cxx      tool               `json:"cxx"`
	Asm      tool               `json:"asm"`
	Linker   tool               `json:"linker"`
	Archiver tool               `json:"archiver"`
	Profiles map[string]profile `json:"profiles"`
}

// ReadFile decodes a toolchain record from path into a core.Toolchain.
func ReadFile(path string) (*core.Toolchain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r record
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		return nil, err
	}

	tc := &core.Toolchain{
		CCompiler:   toCompilerTool(r.CC),
		CxxCompiler: toCompilerTool(r.Cxx),
		AsmCompiler: toCompilerTool(r.Asm),
		Linker:      toCompilerTool(r.Linker),
		Archiver:    toCompilerTool(r.Archiver),
		Profiles:    make(map[string]core.Profile, len(r.Profiles)),
	}
	for name, p := range r.Profiles {
		tc.Profiles[name] = core.Profile{
			Name:      name,
			CFlags:    p.CFlags,
			CxxFlags:  p.CxxFlags,
			AsmFlags:  p.AsmFlags,
			LinkFlags: p.LinkFlags,
		}
	}
	return tc, nil
}

func toCompilerTool(t tool) core.CompilerTool {
	if t.Path == "" {
		return core.CompilerTool{}
	}
	return core.CompilerTool{
		Path:    t.Path,
		ID:      t.ID,
		Version: core.NewToolVersion(t.Version),
	}
}
