// Package container starts the packaged image locally for verification and
// tears it down again.
package container

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/config"
)

const defaultPollInterval = 250 * time.Millisecond

// goneMarkers identify docker errors meaning the container is already
// stopped or removed.
var goneMarkers = []string{"No such container", "is not running"}

// Manager runs a container from the packaged image.
type Manager struct {
	Runner command.Runner
	Log    logrus.FieldLogger

	// Getenv reads the host environment. Defaults to os.Getenv.
	Getenv func(string) string
	// PollInterval is the delay between readiness probes.
	PollInterval time.Duration
}

// NewManager creates a Manager.
func NewManager(r command.Runner, log logrus.FieldLogger) *Manager {
	return &Manager{
		Runner:       r,
		Log:          log,
		Getenv:       os.Getenv,
		PollInterval: defaultPollInterval,
	}
}

// RunArgs builds the docker run argument vector. The image is always last so
// nothing after it is read as a container argument.
func (m *Manager) RunArgs(s config.RunSettings) ([]string, error) {
	args := []string{
		"run", "-d",
		"-e", "ENVIRONMENT=" + s.Environment,
		"-p", fmt.Sprintf("127.0.0.1:%d:%d", s.LocalPort, s.ContainerPort),
		"--name", s.ContainerName,
	}

	if s.PropagateAWSCredentials {
		if key := m.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
			m.Log.Info("propagating AWS credentials into container from env")
			args = append(args,
				"-e", "AWS_ACCESS_KEY_ID="+key,
				"-e", "AWS_SECRET_ACCESS_KEY="+m.Getenv("AWS_SECRET_ACCESS_KEY"),
			)
		} else {
			m.Log.Info("propagating AWS credentials into container from .aws")
			args = append(args, "-v", m.Getenv("HOME")+"/.aws/credentials:/root/.aws/credentials:ro")
		}
	}

	if s.EnvFile != "" {
		env, err := godotenv.Read(s.EnvFile)
		if err != nil {
			return nil, errors.Wrapf(err, "reading env file %s", s.EnvFile)
		}
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			args = append(args, "-e", k+"="+env[k])
		}
	}

	args = append(args, s.ExtraArgs...)
	args = append(args, s.Image)
	return args, nil
}

// Start runs the image detached and returns the container id.
func (m *Manager) Start(ctx context.Context, s config.RunSettings) (string, error) {
	if err := command.CheckExecutable(ctx, m.Runner, s.DockerExecutable, "docker run"); err != nil {
		return "", err
	}
	args, err := m.RunArgs(s)
	if err != nil {
		return "", err
	}

	m.Log.Infof("starting %s as %s on 127.0.0.1:%d", s.Image, s.ContainerName, s.LocalPort)
	res, err := m.Runner.Run(ctx, command.Command{
		Executable:     s.DockerExecutable,
		Args:           args,
		LogName:        "docker_run",
		FailureMessage: "Error starting docker container",
	})
	if err != nil {
		return "", err
	}
	var id string
	if len(res.Lines) > 0 {
		id = strings.TrimSpace(res.Lines[len(res.Lines)-1])
	}
	return id, nil
}

// WaitReady polls the published port until it accepts a TCP connection or
// the ready timeout elapses.
func (m *Manager) WaitReady(ctx context.Context, s config.RunSettings) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(s.LocalPort))
	ctx, cancel := context.WithTimeout(ctx, s.ReadyTimeout)
	defer cancel()

	interval := m.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	var dialer net.Dialer
	var lastErr error
	for {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()
			m.Log.Debugf("%s accepting connections", addr)
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return errors.Wrapf(lastErr, "container %s not ready on %s after %s", s.ContainerName, addr, s.ReadyTimeout)
		case <-time.After(interval):
		}
	}
}

// Stop kills and removes the container. A container that is already
// stopped or gone is not an error, so Stop can be called repeatedly.
func (m *Manager) Stop(ctx context.Context, s config.RunSettings) error {
	steps := []struct {
		verb    string
		logName string
		message string
	}{
		{"kill", "docker_kill", "Error killing docker container"},
		{"rm", "docker_rm", "Error removing docker container"},
	}
	for _, st := range steps {
		c := command.Command{
			Executable: s.DockerExecutable,
			Args:       []string{st.verb, s.ContainerName},
			LogName:    st.logName,
		}
		res, err := m.Runner.Run(ctx, c)
		if err != nil {
			return err
		}
		if res.ExitCode != 0 && isGone(res.ErrorLines) {
			m.Log.Debugf("docker %s %s: already gone", st.verb, s.ContainerName)
			continue
		}
		c.FailureMessage = st.message
		if err := command.Check(c, res); err != nil {
			return err
		}
	}
	return nil
}

// Verify starts the container, waits for it to accept connections, runs
// check and always tears the container down again. When running on verify
// is disabled, check runs without a container.
func (m *Manager) Verify(ctx context.Context, s config.RunSettings, check func(context.Context) error) (err error) {
	if !s.OnVerify {
		m.Log.Debug("run_docker_on_verify is off; verifying without a container")
		return check(ctx)
	}

	defer func() {
		// Teardown uses a fresh context so it still runs after cancellation.
		stopErr := m.Stop(context.WithoutCancel(ctx), s)
		if err == nil {
			err = stopErr
		} else if stopErr != nil {
			m.Log.Warnf("teardown failed: %v", stopErr)
		}
	}()

	if _, err := m.Start(ctx, s); err != nil {
		return err
	}
	if err := m.WaitReady(ctx, s); err != nil {
		return err
	}
	return check(ctx)
}

func isGone(lines []string) bool {
	for _, l := range lines {
		for _, marker := range goneMarkers {
			if strings.Contains(l, marker) {
				return true
			}
		}
	}
	return false
}
