package driver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rbrinfo/rbrinfo/internal/config"
	"github.com/rbrinfo/rbrinfo/internal/loader"
	"github.com/rbrinfo/rbrinfo/internal/pipeline"
	"github.com/rbrinfo/rbrinfo/internal/record"
	"github.com/rbrinfo/rbrinfo/internal/rerr"
)

// Exit codes: 0 on success, 1 on generic failure; a compiler-internal
// failure propagates the host compiler's own exit code.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Driver runs one invocation mode
type Driver struct {
	Self      string // Path to this binary, for RUSTC_WRAPPER
	BuildTool string // Underlying build tool, "cargo" unless overridden
	Compiler  string // Host compiler, "rustc" unless overridden
	Config    *config.Config
	Stdout    io.Writer
	Stderr    io.Writer
	Verbose   bool
}

// New builds a driver with the standard toolchain bindings
func New(cfg *config.Config) *Driver {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	return &Driver{
		Self:      self,
		BuildTool: "cargo",
		Compiler:  "rustc",
		Config:    cfg,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Verbose:   os.Getenv(EnvVerbose) != "",
	}
}

// RunCargoMode implements the cargo-style wrapper: detect the current
// package, then re-invoke the build tool per bin/lib target with this
// binary installed as the compiler wrapper. Arguments before a literal
// "--" go to the build tool; arguments after it ride in EnvArgs as a
// JSON string.
func (d *Driver) RunCargoMode(args []string) int {
	crateDir := os.Getenv(EnvCrateDir)
	if crateDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(d.Stderr, "error: %v\n", err)
			return ExitFailure
		}
		crateDir = wd
	}

	manifest, err := LoadManifest(crateDir)
	if err != nil {
		return d.fail(err)
	}

	buildArgs, passthrough := splitArgs(args)
	passJSON, err := json.Marshal(passthrough)
	if err != nil {
		return d.fail(rerr.Newf(rerr.DRV002, "serialize passthrough args: %v", err))
	}

	env := append(os.Environ(),
		EnvRustcWrapper+"="+d.Self,
		EnvTopCrate+"="+CrateEnvName(manifest.Package.Name),
		EnvArgs+"="+string(passJSON),
		EnvCrateDir+"="+crateDir,
	)

	for _, target := range manifest.Targets(crateDir) {
		cmdArgs := []string{"build"}
		switch target.Kind {
		case "bin":
			cmdArgs = append(cmdArgs, "--bin", target.Name)
		case "lib":
			cmdArgs = append(cmdArgs, "--lib")
		}
		cmdArgs = append(cmdArgs, buildArgs...)

		if d.Verbose {
			fmt.Fprintf(d.Stderr, "rbrinfo: %s %s\n", d.BuildTool, strings.Join(cmdArgs, " "))
		}
		cmd := exec.Command(d.BuildTool, cmdArgs...)
		cmd.Dir = crateDir
		cmd.Env = env
		cmd.Stdout = d.Stdout
		cmd.Stderr = d.Stderr
		if err := cmd.Run(); err != nil {
			if code, ok := exitCode(err); ok {
				return code
			}
			return d.fail(rerr.Newf(rerr.DRV002, "build tool: %v", err))
		}
	}
	return ExitOK
}

// RunWrapperMode stands in for the host compiler. Dependencies pass
// straight through; the analyzed crate additionally runs the analysis
// pipeline over the front-end's IR dump.
func (d *Driver) RunWrapperMode(args []string) int {
	compilerArgs := args[1:] // args[0] names the compiler

	if os.Getenv(EnvBeRustc) == "" && d.isTopCrate(compilerArgs) {
		compilerArgs = append(compilerArgs, "-Zalways_encode_mir", "-Cpanic=abort")
	}

	if code := d.execCompiler(compilerArgs); code != ExitOK {
		// Host-compiler errors propagate as the process exit code.
		return code
	}

	if os.Getenv(EnvBeRustc) != "" || !d.isTopCrate(compilerArgs) {
		return ExitOK
	}
	return d.analyze()
}

// analyze loads the IR dump and runs extraction plus instrumentation,
// emitting records through the configured sink
func (d *Driver) analyze() int {
	dumpPath := os.Getenv(EnvIRDump)
	if dumpPath == "" {
		// Nothing dumped for this unit; a pass-through compile.
		return ExitOK
	}
	dump, err := loader.LoadFile(dumpPath)
	if err != nil {
		return d.fail(rerr.Newf(rerr.DRV002, "IR dump %s: %v", dumpPath, err))
	}

	sink, err := d.openSink()
	if err != nil {
		return d.fail(err)
	}
	record.Init(sink)
	defer func() { _ = record.Shutdown() }()

	logf := func(string, ...any) {}
	if d.Verbose {
		logf = func(format string, args ...any) {
			fmt.Fprintf(d.Stderr, "rbrinfo: "+format+"\n", args...)
		}
	}

	_, err = pipeline.Run(dump.Crate, dump.Bodies, pipeline.Config{
		RunID:    MintRunID(),
		Filters:  d.Config.ExtractFilters(),
		Distance: d.Config.Distance,
		Logf:     logf,
	})
	if err != nil {
		return d.fail(err)
	}
	return ExitOK
}

func (d *Driver) openSink() (record.Writer, error) {
	if d.Config.Sink == config.SinkMemory {
		return record.NewMemoryStore(), nil
	}
	return record.NewFileWriter(d.Config.LogDir)
}

// isTopCrate reports whether this compilation unit is the crate under
// analysis, per the --crate-name argument and EnvTopCrate
func (d *Driver) isTopCrate(compilerArgs []string) bool {
	want := os.Getenv(EnvTopCrate)
	if want == "" {
		return false
	}
	return crateNameOf(compilerArgs) == want
}

// crateNameOf extracts --crate-name from a compiler argument list
func crateNameOf(args []string) string {
	for i, a := range args {
		if a == "--crate-name" && i+1 < len(args) {
			return args[i+1]
		}
		if name, ok := strings.CutPrefix(a, "--crate-name="); ok {
			return name
		}
	}
	return ""
}

func (d *Driver) execCompiler(args []string) int {
	cmd := exec.Command(d.Compiler, args...)
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		if code, ok := exitCode(err); ok {
			return code
		}
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

// CompilerVersion delegates -v / --version to the host compiler
func (d *Driver) CompilerVersion() int {
	return d.execCompiler([]string{"--version"})
}

func (d *Driver) fail(err error) int {
	if rep, ok := rerr.AsReport(err); ok {
		out, jerr := rep.ToJSON(true)
		if jerr == nil {
			fmt.Fprintf(d.Stderr, "error: %s\n", out)
			return ExitFailure
		}
	}
	fmt.Fprintf(d.Stderr, "error: %v\n", err)
	return ExitFailure
}

// splitArgs divides an argument list at the first literal "--"
func splitArgs(args []string) (before, after []string) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

func exitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}
