// Package compiler orchestrates one whole-program compilation:
// reading the source file (C1), tokenizing it (C2), driving the
// parser/type-checker/emitter (C3-C5) to produce Jasmin text, writing
// that text to `<class>.j`, and invoking the external Jasmin
// assembler to produce `<class>.class` (spec.md §6). Grounded on
// compiler/compiler.go's CompileFile/Compile pair, which chains its
// own pipeline stages the same way (read file, parse, analyze,
// compile) and wraps every stage's error with tlog.app/go/errors.
package compiler

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/alan-2022/alanc/internal/diag"
	"github.com/alan-2022/alanc/internal/parser"
	"github.com/alan-2022/alanc/internal/scanner"
	"github.com/alan-2022/alanc/internal/source"
)

// Options configures one compilation run.
type Options struct {
	// JasminJar is the path to the Jasmin assembler's executable jar
	// (spec.md §6's JASMIN_JAR). Required unless SkipAssemble is set:
	// Compile invokes the assembler after writing the .j file, and an
	// empty JasminJar then raises a diag.FatalSystem panic.
	JasminJar string

	// OutDir is the directory the .j and .class files are written to.
	// Empty means the current working directory.
	OutDir string

	// SkipAssemble, when set, stops after writing the .j file and
	// does not invoke the external assembler. Used by tests that have
	// no JASMIN_JAR available.
	SkipAssemble bool
}

// Result is everything one compilation produced.
type Result struct {
	ClassName string
	JPath     string
	ClassPath string
}

// CompileFile reads name from disk and compiles it, per opts.
func CompileFile(ctx context.Context, name string, opts Options) (res *Result, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		diag.FatalSystem("cannot open source %q: %v", name, err)
	}

	tlog.SpanFromContext(ctx).Printw("read source", "name", name, "size", len(text))

	return Compile(ctx, text, opts)
}

// Compile runs the full C1-C6 pipeline over already-read source text.
func Compile(ctx context.Context, text []byte, opts Options) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compiler: compile")
	defer tr.Finish("err", &err)

	parseResult, perr := parseText(ctx, text)
	if perr != nil {
		return nil, errors.Wrap(perr, "parse text")
	}

	tr.Printw("parsed", "class", parseResult.ClassName, "bytes", len(parseResult.Jasmin))

	jPath := filepath.Join(opts.OutDir, parseResult.ClassName+".j")
	if werr := os.WriteFile(jPath, parseResult.Jasmin, 0o644); werr != nil {
		diag.FatalSystem("cannot write output %q: %v", jPath, werr)
	}

	res = &Result{ClassName: parseResult.ClassName, JPath: jPath}

	if opts.SkipAssemble {
		return res, nil
	}

	if aerr := assemble(ctx, opts, jPath); aerr != nil {
		return nil, errors.Wrap(aerr, "assemble")
	}

	res.ClassPath = filepath.Join(opts.OutDir, parseResult.ClassName+".class")

	return res, nil
}

// parseText recovers internal/diag's panic-based fatal errors via
// parser.Parse's own boundary, so a malformed program surfaces as a
// returned error rather than propagating a panic out of Compile.
func parseText(ctx context.Context, text []byte) (*parser.Result, error) {
	tr := tlog.SpanFromContext(ctx)

	r := source.New(text)
	sc := scanner.New(r)

	res, err := parser.Parse(sc)
	if err != nil {
		tr.Printw("parse failed", "err", err)

		return nil, err
	}

	return res, nil
}

// assemble shells out to the Jasmin assembler (spec.md §6/§13): `java
// -jar $JASMIN_JAR <class>.j`, run with the output directory as its
// working directory so the produced .class file lands alongside the
// .j source.
func assemble(ctx context.Context, opts Options, jPath string) error {
	if opts.JasminJar == "" {
		diag.FatalSystem("JASMIN_JAR is not set")
	}

	tr := tlog.SpanFromContext(ctx)

	cmd := exec.CommandContext(ctx, "java", "-jar", opts.JasminJar, filepath.Base(jPath))
	cmd.Dir = opts.OutDir
	if cmd.Dir == "" {
		cmd.Dir = "."
	}

	out, err := cmd.CombinedOutput()

	tr.Printw("ran assembler", "jar", opts.JasminJar, "file", jPath, "output", string(out))

	if err != nil {
		return errors.Wrap(err, "jasmin: %s", out)
	}

	return nil
}
