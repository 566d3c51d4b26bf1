// Command alanc is ALAN-2022's command-line front end (spec.md §6):
// it reads JASMIN_JAR from the environment, compiles each source file
// named on the command line, and reports the first diagnostic
// encountered with exit code 0 on success, non-zero otherwise.
// Grounded on cmd/slow/main.go's cli.Command/RunAndExit wiring.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/alan-2022/alanc/internal/compiler"
	"github.com/alan-2022/alanc/internal/diag"
)

func main() {
	app := &cli.Command{
		Name:        "alanc",
		Description: "alanc compiles ALAN-2022 source files to JVM class files",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func compileAct(c *cli.Command) (err error) {
	defer diag.Recover(&err)

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	jar := os.Getenv("JASMIN_JAR")
	if jar == "" {
		diag.FatalSystem("JASMIN_JAR is not set")
	}

	opts := compiler.Options{JasminJar: jar, OutDir: os.Getenv("ALANC_OUT_DIR")}

	if len(c.Args) == 0 {
		return errors.New("usage: alanc <source-file>...")
	}

	for _, name := range c.Args {
		res, rerr := compileOne(ctx, name, opts)
		if rerr != nil {
			reportDiagnostic(name, rerr)

			return errors.Wrap(rerr, "%v", name)
		}

		fmt.Fprintf(os.Stdout, "%s -> %s\n", name, res.ClassPath)
	}

	return nil
}

// compileOne converts internal/diag.FatalSystem panics (environment
// and I/O failures raised before or outside the parser's own
// diag.Recover boundary) into a returned error too, so main never
// sees a bare panic.
func compileOne(ctx context.Context, name string, opts compiler.Options) (res *compiler.Result, err error) {
	defer diag.Recover(&err)

	return compiler.CompileFile(ctx, name, opts)
}

func reportDiagnostic(file string, err error) {
	var e *diag.Error
	if stderrors.As(err, &e) && e.HasPos {
		fmt.Fprintf(os.Stderr, "%s:%s: %s\n", file, e.Pos, e.Message)

		return
	}

	fmt.Fprintf(os.Stderr, "%s: %s\n", file, err)
}
