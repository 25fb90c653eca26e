package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/rbrinfo/rbrinfo/internal/config"
	"github.com/rbrinfo/rbrinfo/internal/driver"
	"github.com/rbrinfo/rbrinfo/internal/inspect"
)

var (
	// Version info - set by ldflags during build
	Version = "dev"
	Commit  = "unknown"

	// Color output
	red  = color.New(color.FgRed).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	// Wrapper mode: the build tool invokes us with the compiler as
	// the first positional argument.
	if len(args) >= 2 && strings.Contains(args[1], "rustc") {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return driver.ExitFailure
		}
		return driver.New(cfg).RunWrapperMode(args[1:])
	}

	fs := flag.NewFlagSet("rbrinfo", flag.ContinueOnError)
	var (
		versionFlag = fs.Bool("version", false, "Print version information")
		helpFlag    = fs.Bool("help", false, "Show help")
		configPath  = fs.String("config", "rbrinfo.yaml", "Configuration file")
	)
	fs.BoolVar(versionFlag, "v", *versionFlag, "Print version information")
	fs.BoolVar(helpFlag, "h", *helpFlag, "Show help")
	if err := fs.Parse(args[1:]); err != nil {
		return driver.ExitFailure
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return driver.ExitFailure
	}

	if *versionFlag {
		printVersion()
		return driver.New(cfg).CompilerVersion()
	}
	if *helpFlag || fs.NArg() == 0 {
		printHelp()
		return driver.ExitOK
	}

	switch fs.Arg(0) {
	case "rusty":
		return driver.New(cfg).RunCargoMode(fs.Args()[1:])

	case "inspect":
		dir := cfg.LogDir
		if fs.NArg() >= 2 {
			dir = fs.Arg(1)
		}
		session, err := inspect.NewSession(dir, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return driver.ExitFailure
		}
		if err := session.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return driver.ExitFailure
		}
		return driver.ExitOK

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), fs.Arg(0))
		printHelp()
		return driver.ExitFailure
	}
}

func loadConfig() (*config.Config, error) {
	path := os.Getenv("RBRINFO_CONFIG")
	if path == "" {
		path = "rbrinfo.yaml"
	}
	return config.Load(path)
}

func printVersion() {
	fmt.Printf("rbrinfo %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
}

func printHelp() {
	fmt.Println(bold("rbrinfo - CFG-IR analysis and instrumentation toolchain"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  rbrinfo rusty [flags] [-- passthrough]   analyze and instrument the current package")
	fmt.Println("  rbrinfo inspect [log-dir]                browse emitted records")
	fmt.Println("  rbrinfo -v | --version                   host compiler version")
	fmt.Println("  rbrinfo -h | --help                      this help")
	fmt.Println()
	fmt.Println("When invoked through the build tool with a compiler path as the")
	fmt.Println("first argument, rbrinfo acts as the compiler wrapper.")
}
