package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/renderplan/internal/ir"
)

// CompileString compiles every fixture declared under `fixture:` in src.
// filename is used for error positions only.
func CompileString(src, filename string) ([]ir.FixtureSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileAll(v)
}

// CompileFile compiles the fixtures of a single CUE file.
func CompileFile(path string) ([]ir.FixtureSpec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return CompileString(string(src), path)
}

// CompileDir compiles every CUE file below dir, in lexical path order.
// Each file is compiled on its own; fixture names must be unique across
// files.
func CompileDir(dir string) ([]ir.FixtureSpec, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	var specs []ir.FixtureSpec
	seen := make(map[string]string)
	for _, f := range files {
		got, err := CompileFile(f)
		if err != nil {
			return nil, err
		}
		for _, spec := range got {
			if prev, dup := seen[spec.Name]; dup {
				return nil, fmt.Errorf("fixture %q declared in %s and %s", spec.Name, prev, f)
			}
			seen[spec.Name] = f
		}
		specs = append(specs, got...)
	}
	return specs, nil
}

// Compile dispatches on path: directories go through CompileDir, files
// through CompileFile.
func Compile(path string) ([]ir.FixtureSpec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return CompileDir(path)
	}
	return CompileFile(path)
}

func compileAll(v cue.Value) ([]ir.FixtureSpec, error) {
	fv := v.LookupPath(cue.ParsePath("fixture"))
	if !fv.Exists() {
		return nil, &CompileError{Field: "fixture", Message: "no fixtures declared", Pos: v.Pos()}
	}
	iter, err := fv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []ir.FixtureSpec
	for iter.Next() {
		spec, err := CompileFixture(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
