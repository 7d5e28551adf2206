package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"oak/toolchain-go/pkg/ast"
	"oak/toolchain-go/pkg/compiler"
	"oak/toolchain-go/pkg/driver"
	"oak/toolchain-go/pkg/interpreter"
)

const cliToolVersion = "oak 0.0.0-dev"

var errManifestNotFound = errors.New("oak.yml not found")

// Replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runCommand("", nil)
	}

	switch args[0] {
	case "--help", "-h":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runCommand(driver.TargetModeRun, args[1:])
	case "compile":
		return runCommand(driver.TargetModeCompile, args[1:])
	case "symbols":
		return runCommand(driver.TargetModeSymbols, args[1:])
	case "watch":
		return runWatch(args[1:])
	default:
		return runCommand("", args)
	}
}

// invocation is one resolved unit of work: which engine, which AST file,
// where compiled output goes and whether warnings are shown.
type invocation struct {
	mode     driver.TargetMode
	entry    string
	output   string
	warnings driver.WarningMode
}

func runCommand(mode driver.TargetMode, args []string) int {
	inv, err := resolveInvocation(mode, args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return execute(inv)
}

// resolveInvocation turns command-line arguments into an invocation. A
// positional argument names a manifest target or an AST file; with none,
// the manifest's default target is used. An explicit mode overrides the
// target's.
func resolveInvocation(mode driver.TargetMode, args []string) (*invocation, error) {
	inv := &invocation{mode: mode}
	var positional []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o", "--output":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a path", args[i])
			}
			inv.output = args[i+1]
			i++
		default:
			positional = append(positional, args[i])
		}
	}
	if len(positional) > 1 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[1:], " "))
	}

	manifest, err := loadManifestFrom(".")
	if err != nil && !errors.Is(err, errManifestNotFound) {
		if len(positional) == 0 || !looksLikePathCandidate(positional[0]) {
			return nil, fmt.Errorf("failed to load manifest: %w", err)
		}
		fmt.Fprintf(stderr, "warning: unable to load manifest (%v); falling back to direct file execution\n", err)
		manifest = nil
	}

	var target *driver.TargetSpec
	switch {
	case len(positional) == 0:
		if manifest == nil {
			return nil, fmt.Errorf("oak requires a manifest target or AST file (%s not found)", driver.ManifestFile)
		}
		if target, err = manifest.DefaultTarget(); err != nil {
			return nil, fmt.Errorf("manifest error: %w", err)
		}
	case manifest != nil:
		target, _ = manifest.FindTarget(positional[0])
	}

	if target != nil {
		inv.applyTarget(manifest, target)
		return inv, nil
	}

	candidate := positional[0]
	if !looksLikePathCandidate(candidate) {
		if _, statErr := os.Stat(candidate); statErr != nil {
			return nil, fmt.Errorf("unknown target or file %q", candidate)
		}
	}
	if inv.mode == "" {
		inv.mode = driver.TargetModeRun
	}
	inv.entry = candidate
	if fileManifest, err := loadManifestFrom(candidate); err == nil {
		inv.warnings = fileManifest.Warnings
	} else if manifest != nil {
		inv.warnings = manifest.Warnings
	}
	return inv, nil
}

func (inv *invocation) applyTarget(manifest *driver.Manifest, target *driver.TargetSpec) {
	if inv.mode == "" {
		inv.mode = target.Mode
	}
	inv.entry = manifest.Resolve(target.Entry)
	if inv.output == "" {
		inv.output = manifest.Resolve(target.Output)
	}
	inv.warnings = manifest.Warnings
}

func execute(inv *invocation) int {
	entry := strings.TrimSpace(inv.entry)
	if entry == "" {
		fmt.Fprintln(stderr, "oak requires an AST file")
		return 1
	}
	program, err := driver.LoadProgram(entry)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load program: %v\n", err)
		return 1
	}

	switch inv.mode {
	case driver.TargetModeCompile:
		return compileProgram(program, inv)
	case driver.TargetModeSymbols:
		return interpretProgram(program, inv, true)
	default:
		return interpretProgram(program, inv, false)
	}
}

func interpretProgram(program *ast.Program, inv *invocation, withSymbols bool) int {
	result := interpreter.New().Execute(program)
	io.WriteString(stdout, result.Console)
	if withSymbols {
		if err := printSymbols(stdout, result.Symbols); err != nil {
			fmt.Fprintf(stderr, "failed to write symbols: %v\n", err)
			return 1
		}
	}
	if inv.warnings != driver.WarningsHide {
		for _, w := range result.Warnings {
			fmt.Fprintln(stderr, w.Error())
		}
	}
	return reportErrors(result.Errors)
}

func compileProgram(program *ast.Program, inv *invocation) int {
	result, err := compiler.New(compiler.Options{}).Compile(program)
	if err != nil {
		fmt.Fprintf(stderr, "compile error: %v\n", err)
		return 1
	}
	if inv.warnings != driver.WarningsHide {
		for _, w := range result.Warnings {
			fmt.Fprintf(stderr, "warning: %s\n", w)
		}
	}
	if inv.output == "" || inv.output == "-" {
		io.WriteString(stdout, result.Assembly)
	} else if err := os.WriteFile(inv.output, []byte(result.Assembly), 0o644); err != nil {
		fmt.Fprintf(stderr, "failed to write %s: %v\n", inv.output, err)
		return 1
	}
	return reportErrors(result.Errors)
}

func reportErrors(errs []error) int {
	for _, err := range errs {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	if len(errs) > 0 {
		return 1
	}
	return 0
}

func printSymbols(w io.Writer, symbols []interpreter.Symbol) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSCOPE\tLINE\tCOLUMN")
	for _, sym := range symbols {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", sym.ID, sym.Name, sym.Type, sym.Scope, sym.Line, sym.Column)
	}
	return tw.Flush()
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	manifestPath, err := findManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.ContainsAny(arg, `/\`) || strings.HasPrefix(arg, ".") {
		return true
	}
	return filepath.Ext(arg) == ".json"
}

// findManifest walks from start towards the filesystem root looking for
// oak.yml.
func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestFile)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestFile, origin, errManifestNotFound)
		}
		dir = parent
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  oak [target]")
	fmt.Fprintln(w, "  oak run [target | <file.json>]")
	fmt.Fprintln(w, "  oak compile [target | <file.json>] [-o out.s]")
	fmt.Fprintln(w, "  oak symbols [target | <file.json>]")
	fmt.Fprintln(w, "  oak watch [run|compile|symbols] [target | <file.json>] [-o out.s]")
}
