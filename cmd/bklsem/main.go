// Command bklsem is the entry point wiring an externally-produced AST
// in and diagnostics out, the same role lang/sem/main.go and
// lang/ysem's driver play for the teacher's compiler: read a
// already-parsed program, run the analysis passes, report errors or
// success. Grounded on kryptco-kr's github.com/urfave/cli use for its
// own `kr` command surface — the pack's strongest example of a Go CLI
// dependency — in place of the teacher's flag.Bool/flag.String.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gmofishsauce/bkl/cmd/bklsem/astio"
	"github.com/gmofishsauce/bkl/diag"
	"github.com/gmofishsauce/bkl/typecheck"
)

// Exit status convention mirrors lang/sem/main.go: 0 success, 1 type
// errors reported, 2 usage error.
const (
	exitOK         = 0
	exitTypeErrors = 1
	exitUsage      = 2
)

func main() {
	app := &cli.App{
		Name:  "bklsem",
		Usage: "run the bkl semantic analyzer over a JSON-encoded AST",
		Commands: []*cli.Command{
			{
				Name:      "infer",
				Usage:     "run type inference only and report diagnostics",
				ArgsUsage: "[file]",
				Action:    runInfer,
			},
			{
				Name:      "check",
				Usage:     "run type inference followed by the completeness pass",
				ArgsUsage: "[file]",
				Action:    runCheck,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "bklsem: %v\n", err)
		os.Exit(exitUsage)
	}
}

func openInput(c *cli.Context) (*os.File, error) {
	if c.NArg() == 0 {
		return os.Stdin, nil
	}
	if c.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one file argument")
	}
	return os.Open(c.Args().Get(0))
}

func runInfer(c *cli.Context) error {
	f, err := openInput(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bklsem: %v\n", err)
		os.Exit(exitUsage)
	}
	if f != os.Stdin {
		defer f.Close()
	}
	program, err := astio.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bklsem: %v\n", err)
		os.Exit(exitUsage)
	}

	collector := &diag.Collector{}
	checker := typecheck.NewChecker(diag.NewReporter(collector))
	ok := checker.InferProgram(program)
	reportDiagnostics(collector)
	if !ok {
		os.Exit(exitTypeErrors)
	}
	fmt.Println("ok")
	os.Exit(exitOK)
	return nil
}

func runCheck(c *cli.Context) error {
	f, err := openInput(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bklsem: %v\n", err)
		os.Exit(exitUsage)
	}
	if f != os.Stdin {
		defer f.Close()
	}
	program, err := astio.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bklsem: %v\n", err)
		os.Exit(exitUsage)
	}

	collector := &diag.Collector{}
	checker := typecheck.NewChecker(diag.NewReporter(collector))
	if ok := checker.InferProgram(program); ok {
		checker.CompleteProgram(program)
	}
	reportDiagnostics(collector)
	if collector.Len() > 0 {
		os.Exit(exitTypeErrors)
	}
	fmt.Println("ok")
	os.Exit(exitOK)
	return nil
}

func reportDiagnostics(collector *diag.Collector) {
	for _, d := range collector.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if n := collector.Len(); n > 0 {
		fmt.Fprintf(os.Stderr, "%d error(s)\n", n)
	}
}
