package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/catapult-build/catapult/src/caterr"
	"github.com/catapult-build/catapult/src/cli"
	"github.com/catapult-build/catapult/src/cli/logging"
	"github.com/catapult-build/catapult/src/core"
	"github.com/catapult-build/catapult/src/generate/msvc"
	"github.com/catapult-build/catapult/src/generate/ninja"
	"github.com/catapult-build/catapult/src/graph"
	"github.com/catapult-build/catapult/src/loader"
	"github.com/catapult-build/catapult/src/loader/asp"
	"github.com/catapult-build/catapult/src/manifest"
	"github.com/catapult-build/catapult/src/toolchainrecord"
)

var log = logging.Log

// manifestFileName and resolvedDependencyMapFileName are the fixed JSON
// sidecar filenames this CLI reads: the manifest out of every project
// directory, the resolved dependency map out of the root project only. The
// core itself never parses catapult.toml; these are the plain records an
// upstream manifest/resolver step is expected to have already produced.
const (
	manifestFileName              = "catapult.manifest.json"
	resolvedDependencyMapFileName = "catapult.resolved.json"
)

var opts struct {
	Usage string `usage:"Catapult turns build.catapult scripts into Ninja or Visual Studio build files.\n\nIt evaluates a project's build script and those of its resolved dependencies, builds one unified target graph, and lowers that graph to the chosen backend."`

	SourceDir string `short:"S" long:"source-dir" description:"Root project directory, containing build.catapult and its manifest." required:"true"`
	BuildDir  string `short:"B" long:"build-dir" description:"Output directory for generated build files; created if it does not exist." required:"true"`
	Generator string `short:"G" long:"generator" choice:"ninja" choice:"msvc" description:"Backend to generate build files for." required:"true"`
	Toolchain string `short:"T" long:"toolchain" description:"Path to the toolchain record (JSON)." required:"true"`
	Profile   string `long:"profile" description:"Toolchain profile to use. Required for --generator ninja; rejected for --generator msvc."`

	CStandard      string `long:"c_standard" description:"C standard exposed to build scripts as global_options.c_standard." default:"c17"`
	CxxStandard    string `long:"cxx_standard" description:"C++ standard exposed to build scripts as global_options.cxx_standard." default:"c++20"`
	TargetPlatform string `long:"target_platform" description:"Target platform identifier exposed to build scripts as global_options.target_platform."`

	Verbosity cli.Verbosity `short:"v" long:"verbosity" description:"Verbosity of output (error, warning, notice, info, debug)" default:"warning"`
	LogFile   string        `long:"log_file" description:"File to echo full logging output to"`
}

func main() {
	cli.ParseFlagsOrDie("catapult", "1.0.0", &opts)
	cli.InitLogging(opts.Verbosity)
	if opts.LogFile != "" {
		cli.InitFileLogging(opts.LogFile, opts.Verbosity)
		defer cli.CloseFileLogging()
	}

	if err := run(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

func run() error {
	generator := opts.Generator
	if generator == "msvc" {
		if err := msvc.RejectProfileFlag(opts.Profile); err != nil {
			return err
		}
	} else if opts.Profile == "" {
		return &caterr.ToolchainMismatch{Message: "--profile is required with --generator ninja"}
	}

	tc, err := toolchainrecord.ReadFile(opts.Toolchain)
	if err != nil {
		return &caterr.IOError{Path: opts.Toolchain, Message: "failed to read toolchain record", Cause: err}
	}

	resolved, err := manifest.ReadResolvedDependencyMapFile(filepath.Join(opts.SourceDir, resolvedDependencyMapFileName))
	if err != nil {
		return &caterr.IOError{Path: opts.SourceDir, Message: "failed to read resolved dependency map", Cause: err}
	}

	rootManifest, err := manifest.ReadFile(filepath.Join(opts.SourceDir, manifestFileName))
	if err != nil {
		return &caterr.IOError{Path: opts.SourceDir, Message: "failed to read root manifest", Cause: err}
	}

	g := graph.New()
	loaderOpts := loader.Options{
		Host:          asp.NewHost(),
		ReadManifest:  readManifest,
		GlobalOptions: &core.GlobalOptions{
			CStandard:       opts.CStandard,
			CxxStandard:     opts.CxxStandard,
			SelectedProfile: opts.Profile,
			TargetPlatform:  opts.TargetPlatform,
		},
		Toolchain:     tc,
		Graph:         g,
	}

	if _, err := loader.LoadAll(rootManifest.Package.Name, opts.SourceDir, resolved, loaderOpts); err != nil {
		return err
	}

	if err := os.MkdirAll(opts.BuildDir, 0o755); err != nil {
		return &caterr.IOError{Path: opts.BuildDir, Message: "failed to create build directory", Cause: err}
	}

	switch generator {
	case "ninja":
		return ninja.Generate(g, tc, opts.Profile, opts.BuildDir)
	case "msvc":
		return msvc.Generate(g, tc, opts.BuildDir, rootManifest.Package.Name)
	default:
		return fmt.Errorf("unknown generator %q", generator)
	}
}

// readManifest adapts manifest.ReadFile, which reads a single file, to the
// loader's ManifestReader shape, which is handed a project directory.
func readManifest(dir string) (manifest.Manifest, error) {
	return manifest.ReadFile(filepath.Join(dir, manifestFileName))
}
