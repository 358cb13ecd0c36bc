package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/renderplan/internal/compiler"
	"github.com/roach88/renderplan/internal/fixture"
	"github.com/roach88/renderplan/internal/ir"
)

// LoadError is a fixture that could not be turned into a model.
type LoadError struct {
	Code    string
	Message string
	Details any
	Err     error
}

func (e *LoadError) Error() string {
	return e.Message
}

func (e *LoadError) Unwrap() error { return e.Err }

// loadFixture compiles path (a file or a directory of .cue files) and
// picks the fixture called name. name may be empty when path declares
// exactly one fixture.
func loadFixture(path, name string) (*ir.FixtureSpec, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("fixture path not found: %s", path), Err: err}
	}
	specs, err := compiler.Compile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCompileFailed, Message: err.Error(), Err: err}
	}
	if name == "" {
		if len(specs) != 1 {
			return nil, &LoadError{
				Code:    ErrCodeGeneric,
				Message: fmt.Sprintf("%s declares %d fixtures; pick one with --select", path, len(specs)),
				Details: fixtureNames(specs),
			}
		}
		return &specs[0], nil
	}
	for i := range specs {
		if specs[i].Name == name {
			return &specs[i], nil
		}
	}
	return nil, &LoadError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("fixture %q not declared in %s", name, path),
		Details: fixtureNames(specs),
	}
}

func fixtureNames(specs []ir.FixtureSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// loadModel compiles, validates and builds a fixture.
func loadModel(path, name string) (*fixture.Model, error) {
	spec, err := loadFixture(path, name)
	if err != nil {
		return nil, err
	}
	if errs := compiler.ValidateFixture(spec); len(errs) > 0 {
		return nil, &LoadError{
			Code:    ErrCodeInvalidFixture,
			Message: fmt.Sprintf("fixture %s is invalid: %v", spec.Name, errs[0]),
			Details: errs,
		}
	}
	m, err := fixture.Build(spec)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: err.Error(), Err: err}
	}
	return m, nil
}

// failLoad reports a load error; load failures are command errors.
func failLoad(f *OutputFormatter, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return f.Fail(ExitCommandError, le.Code, le, le.Details)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
}

// nodeNames maps exit node identities back to fixture node names.
func nodeNames(m *fixture.Model) map[uint64]string {
	names := make(map[uint64]string, len(m.Nodes))
	for name, n := range m.Nodes {
		names[n.Identity()] = name
	}
	return names
}
