package command

import "context"

// ProbeOutcome classifies an existence check.
type ProbeOutcome int

const (
	// ProbeOK means the probed command exited zero.
	ProbeOK ProbeOutcome = iota
	// ProbeNotFound means the command ran but exited non-zero.
	ProbeNotFound
	// ProbeFailed means the command could not be run.
	ProbeFailed
)

func (o ProbeOutcome) String() string {
	switch o {
	case ProbeOK:
		return "ok"
	case ProbeNotFound:
		return "not-found"
	default:
		return "failed"
	}
}

// Probe runs cmd as an existence check. Any FailureMessage on cmd is ignored:
// a non-zero exit is reported as ProbeNotFound, not as an error.
func Probe(ctx context.Context, r Runner, cmd Command) (ProbeOutcome, *Result, error) {
	cmd.FailureMessage = ""
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return ProbeFailed, res, err
	}
	if res.ExitCode != 0 {
		return ProbeNotFound, res, nil
	}
	return ProbeOK, res, nil
}
