// Package msvc lowers a target graph to a Visual Studio solution: one .sln
// file and one .vcxproj per buildable target. Generation is grounded on the
// teacher's text/template-driven page generator (docs/tools/templater), with
// Catapult's project/solution models standing in for that generator's page
// model.
package msvc

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/fs"
	"github.com/catapult-build/catapult/src/graph"
)

// Generate lowers every target in g to a Visual Studio solution rooted at
// solutionName.sln under outDir, with one .vcxproj per non-interface target
// at outDir/<project>/<target>.vcxproj. Every
// toolchain profile becomes an x64 solution configuration; there is no
// single active profile the way the Ninja backend has one, so passing a
// --profile alongside this generator is rejected by the caller before
// Generate is ever invoked.
func Generate(g *graph.Graph, tc *core.Toolchain, outDir, solutionName string) error {
	if len(tc.ProfileNames()) == 0 {
		return &caterr.ToolchainMismatch{Message: "toolchain defines no profiles to generate configurations from"}
	}

	model := buildSolution(g, tc, outDir)

	for _, p := range model.Projects {
		var buf bytes.Buffer
		if err := vcxprojTemplate.Execute(&buf, p); err != nil {
			return err
		}
		if err := fs.AtomicWriteFile(p.VcxprojPath, crlf(buf.Bytes()), 0o644); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := solutionTemplate.Execute(&buf, model); err != nil {
		return err
	}
	return fs.AtomicWriteFile(filepath.Join(outDir, solutionName+".sln"), crlf(buf.Bytes()), 0o644)
}

// RejectProfileFlag enforces that --profile and the MSVC generator are
// never combined: MSVC solutions carry every profile as a configuration, so
// there is no single profile to select at generation time.
func RejectProfileFlag(profileName string) error {
	if profileName != "" {
		return &caterr.ToolchainMismatch{Message: "--profile is not valid with --generator msvc: every toolchain profile becomes a solution configuration"}
	}
	return nil
}

// crlf converts the template output's Unix newlines to the CRLF line
// endings Visual Studio's own tooling writes, without doubling up on any
// line ending the templates already emit literally.
func crlf(data []byte) []byte {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\r\n")
	return []byte(s)
}
