package command

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Prerequisite names an executable that some step depends on.
type Prerequisite struct {
	Executable string
	Caller     string
}

// CheckExecutable verifies that name can be executed by running
// `<name> --version`. The caller is included in the error message.
func CheckExecutable(ctx context.Context, r Runner, name, caller string) error {
	res, err := r.Run(ctx, Command{
		Executable: name,
		Args:       []string{"--version"},
		LogName:    "prerequisite_" + filepath.Base(name),
	})
	if err != nil {
		return &PrerequisiteError{Executable: name, Caller: caller, Err: err}
	}
	if res.ExitCode != 0 {
		return &PrerequisiteError{Executable: name, Caller: caller}
	}
	return nil
}

// CheckAll checks every prerequisite concurrently and returns one error per
// entry (nil when the executable is available), in input order.
func CheckAll(ctx context.Context, r Runner, prereqs []Prerequisite) []error {
	errs := make([]error, len(prereqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range prereqs {
		g.Go(func() error {
			errs[i] = CheckExecutable(gctx, r, p.Executable, p.Caller)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
