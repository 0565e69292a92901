// Package command runs external tools (container engine, cloud CLI, package
// manager) and mirrors their output into per-invocation log files.
//
// A non-zero exit is only an error when the caller asked for it by setting
// Command.FailureMessage. Existence checks use Probe instead, which turns the
// exit code into a ProbeOutcome.
package command

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Command describes a single external process invocation.
type Command struct {
	Executable string
	Args       []string

	// LogName is the file name (under the runner's log dir) that stdout is
	// mirrored to. Stderr goes to LogName + ".err".
	LogName string

	// FailureMessage, when set, turns a non-zero exit into a *CommandError.
	FailureMessage string

	Dir string
	Env []string // extra KEY=VALUE pairs appended to the process environment
}

// Result is the outcome of a finished process. Immutable once returned.
type Result struct {
	ExitCode   int
	Lines      []string // captured stdout, in order
	ErrorLines []string // captured stderr, in order
	LogPath    string
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// NewRunner returns a Runner that executes processes with os/exec and writes
// log files under logDir.
func NewRunner(logDir string, log logrus.FieldLogger) Runner {
	return &execRunner{
		logDir: logDir,
		log:    log,
	}
}

type execRunner struct {
	logDir string
	log    logrus.FieldLogger
}

func (r *execRunner) Run(ctx context.Context, c Command) (*Result, error) {
	if c.Executable == "" {
		return nil, errors.New("command executable can not be empty")
	}
	logName := c.LogName
	if logName == "" {
		logName = filepath.Base(c.Executable)
	}
	if err := os.MkdirAll(r.logDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating log dir %s", r.logDir)
	}
	logPath := filepath.Join(r.logDir, logName)

	outFile, err := os.Create(logPath)
	if err != nil {
		return nil, errors.Wrapf(err, "creating log file %s", logPath)
	}
	defer outFile.Close()
	errFile, err := os.Create(logPath + ".err")
	if err != nil {
		return nil, errors.Wrapf(err, "creating log file %s.err", logPath)
	}
	defer errFile.Close()

	var stdout, stderr bytes.Buffer
	// nolint:gosec
	cmd := exec.CommandContext(ctx, c.Executable, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdout = io.MultiWriter(outFile, &stdout)
	cmd.Stderr = io.MultiWriter(errFile, &stderr)

	r.log.Debugf("exec: %s %s", c.Executable, strings.Join(Redact(c.Args), " "))

	exitCode := 0
	if runErr := cmd.Run(); runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, errors.Wrapf(runErr, "running %s", c.Executable)
		}
		exitCode = exitErr.ExitCode()
	}

	result := &Result{
		ExitCode:   exitCode,
		Lines:      splitLines(stdout.Bytes()),
		ErrorLines: splitLines(stderr.Bytes()),
		LogPath:    logPath,
	}
	if err := Check(c, result); err != nil {
		for _, line := range result.ErrorLines {
			r.log.Error(line)
		}
		return result, err
	}
	return result, nil
}

// Check applies the failure policy of c to a finished result.
func Check(c Command, result *Result) error {
	if result.ExitCode == 0 || c.FailureMessage == "" {
		return nil
	}
	return &CommandError{
		Message:    c.FailureMessage,
		Executable: c.Executable,
		Result:     result,
	}
}

func splitLines(b []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(b))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
