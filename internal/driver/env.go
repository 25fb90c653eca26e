// Package driver implements the tool's invocation surface: the
// cargo-style wrapper that re-invokes the build tool with this binary
// as the compiler wrapper, the wrapper mode that stands in for the
// host compiler, and the environment contract tying them together.
package driver

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

// Environment contract. The build-tool side writes these; the wrapper
// side reads them.
const (
	// EnvArgs carries JSON-serialized extra arguments through the
	// build tool
	EnvArgs = "MIR_CHECKER_ARGS"

	// EnvTopCrate names the crate to analyze, hyphens folded to
	// underscores
	EnvTopCrate = "MIR_CHECKER_TOP_CRATE_NAME"

	// EnvVerbose enables tracing of sub-invocations when present
	EnvVerbose = "MIR_CHECKER_VERBOSE"

	// EnvCrateDir is the absolute directory of the crate being
	// analyzed
	EnvCrateDir = "RBRINFO_CRATE_DIR"

	// EnvBeRustc forces plain compilation when present (dependencies)
	EnvBeRustc = "RBRINFO_BE_RUSTC"

	// EnvRustcWrapper is the build tool's compiler-wrapper hook, set
	// to this binary for sub-invocations
	EnvRustcWrapper = "RUSTC_WRAPPER"

	// EnvIRDump points the wrapper at the front-end's IR dump for the
	// current compilation unit
	EnvIRDump = "RBRINFO_IR_DUMP"
)

// CrateEnvName folds a package name into the form the wrapper
// compares against: hyphens become underscores
func CrateEnvName(pkg string) string {
	return strings.ReplaceAll(pkg, "-", "_")
}

// MintRunID mints the run identifier threaded through every probe
// call of one invocation
func MintRunID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}
