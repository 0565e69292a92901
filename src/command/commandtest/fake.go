// Package commandtest provides a scripted command.Runner for tests.
package commandtest

import (
	"context"
	"strings"
	"sync"

	"github.com/stagehand-ci/stagehand/src/command"
)

// Response is the scripted outcome of a matching invocation.
type Response struct {
	ExitCode   int
	Lines      []string
	ErrorLines []string
	// Err simulates a process that could not be started.
	Err error
}

type rule struct {
	executable string
	prefix     []string
	resp       Response
}

// Fake records every command it is asked to run and answers from a script.
// Unscripted commands succeed with no output.
type Fake struct {
	mu    sync.Mutex
	rules []rule
	Calls []command.Command
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{}
}

// Respond scripts resp for invocations of executable whose args start with
// argsPrefix. Later rules take precedence over earlier ones.
func (f *Fake) Respond(resp Response, executable string, argsPrefix ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{executable: executable, prefix: argsPrefix, resp: resp})
	return f
}

// Run implements command.Runner.
func (f *Fake) Run(_ context.Context, c command.Command) (*command.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	resp := f.match(c)
	f.mu.Unlock()

	if resp.Err != nil {
		return nil, resp.Err
	}
	res := &command.Result{
		ExitCode:   resp.ExitCode,
		Lines:      resp.Lines,
		ErrorLines: resp.ErrorLines,
		LogPath:    c.LogName,
	}
	if err := command.Check(c, res); err != nil {
		return res, err
	}
	return res, nil
}

func (f *Fake) match(c command.Command) Response {
	for i := len(f.rules) - 1; i >= 0; i-- {
		r := f.rules[i]
		if r.executable != c.Executable || len(r.prefix) > len(c.Args) {
			continue
		}
		ok := true
		for j, p := range r.prefix {
			if c.Args[j] != p {
				ok = false
				break
			}
		}
		if ok {
			return r.resp
		}
	}
	return Response{}
}

// Invocations renders every recorded call as "executable arg1 arg2 ...".
func (f *Fake) Invocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, strings.TrimSpace(c.Executable+" "+strings.Join(c.Args, " ")))
	}
	return out
}

// LogNames returns the LogName of every recorded call, in order.
func (f *Fake) LogNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c.LogName)
	}
	return out
}
