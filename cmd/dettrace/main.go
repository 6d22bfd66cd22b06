// Command dettrace launches a program under the deterministic tracing
// core and reports how it terminated. It wires together the pieces
// spec.md scopes as external collaborators (the seccomp filter builder,
// the fork+exec bootstrap) around supervisor.Supervisor, the module's own
// contribution. Grounded on cmd/runprog/main.go and cmd/run_program/main.go's
// flag-based entrypoint and exit-status translation pattern.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/criyle/go-dettrace/bootstrap"
	"github.com/criyle/go-dettrace/pkg/rlimit"
	"github.com/criyle/go-dettrace/pkg/seccomp"
	"github.com/criyle/go-dettrace/pkg/seccomp/libseccomp"
	"github.com/criyle/go-dettrace/supervisor"
	"github.com/criyle/go-dettrace/syscalltable"
	"github.com/criyle/go-dettrace/types"
)

func printUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] <program> [args...]\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	var (
		configPath                            string
		debugLevel                            int
		workDir                               string
		inputFileName, outputFileName, errorFileName string
		showDetails                           bool
	)

	flag.StringVar(&configPath, "config", "", "Path to a YAML policy file (seccomp allow/trace lists, rlimits, debug level)")
	flag.IntVar(&debugLevel, "debug", -1, "Override the config's debug_level (-1 keeps the config value)")
	flag.StringVar(&workDir, "work-dir", "", "Working directory for the traced program")
	flag.StringVar(&inputFileName, "in", "", "Redirect the traced program's stdin from this file")
	flag.StringVar(&outputFileName, "out", "", "Redirect the traced program's stdout to this file")
	flag.StringVar(&errorFileName, "err", "", "Redirect the traced program's stderr to this file")
	flag.BoolVar(&showDetails, "show-trace-details", false, "Log every intercepted event to stderr")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if debugLevel >= 0 {
		cfg.DebugLevel = debugLevel
	}

	filter, err := buildFilter(cfg.Seccomp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build seccomp filter:", err)
		os.Exit(1)
	}

	files, err := prepareFiles(inputFileName, outputFileName, errorFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeFiles(files)

	runner := &bootstrap.Runner{
		Args:    args,
		Env:     os.Environ(),
		WorkDir: workDir,
		Files:   fileDescriptors(files),
		RLimits: convertRLimits(cfg.RLimits),
		Filter:  filter.SockFprog(),
	}

	handler := newLogHandler(showDetails)
	sv := supervisor.New(handler, syscalltable.New(), cfg.DebugLevel)
	result, err := sv.Run(runner)
	handler.Debug("setUpTime: ", result.SetUpTime, "runningTime: ", result.RunningTime)
	os.Exit(exitCode(result, err))
}

// buildFilter constructs the seccomp-BPF program the bootstrap runner
// installs in the child, grounded on
// pkg/seccomp/libseccomp/seccomp_linux_test.go's Builder usage.
func buildFilter(cfg SeccompConfig) (seccomp.Filter, error) {
	b := libseccomp.Builder{
		Allow:   cfg.Allow,
		Trace:   cfg.Trace,
		Default: parseDefaultAction(cfg.Default),
	}
	return b.Build()
}

func parseDefaultAction(s string) seccomp.Action {
	switch s {
	case "allow":
		return seccomp.ActionAllow
	case "kill":
		return seccomp.ActionKill
	default:
		return seccomp.ActionTrace
	}
}

// convertRLimits adapts pkg/rlimit's config-facing RLimit into
// bootstrap.RLimit, the raw-syscall-safe type childSetupAndExec consumes.
func convertRLimits(cfg RLimitConfig) []bootstrap.RLimit {
	limits := rlimit.RLimits{
		CPU:          cfg.CPU,
		CPUHard:      cfg.CPUHard,
		Data:         cfg.Data,
		FileSize:     cfg.FileSize,
		Stack:        cfg.Stack,
		AddressSpace: cfg.AddressSpace,
		OpenFile:     cfg.OpenFile,
		DisableCore:  cfg.DisableCore,
	}
	prepared := limits.PrepareRLimit()
	out := make([]bootstrap.RLimit, len(prepared))
	for i, rl := range prepared {
		out[i] = bootstrap.RLimit{Res: rl.Res, Rlim: rl.Rlim}
	}
	return out
}

// exitCode translates a types.Result into a process exit status, the same
// way cmd/run_program/main.go translates tracer.TraceCode into its own
// UOJ-flavored status constants.
func exitCode(result types.Result, err error) int {
	switch result.Status {
	case types.StatusExited:
		return result.ExitCode
	case types.StatusKilledBySignal:
		return 128 + result.TerminatingSignal
	default:
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
}
