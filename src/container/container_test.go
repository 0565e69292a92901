package container

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/command/commandtest"
	"github.com/stagehand-ci/stagehand/src/config"
)

func runSettings(t *testing.T, props map[string]string) config.RunSettings {
	t.Helper()
	root := t.TempDir()
	project := config.ProjectSettings{Name: "svc", Version: "1.2.3", RootDir: root}
	s, err := config.ResolveRun(project, config.NewProperties(props))
	if err != nil {
		t.Fatalf("ResolveRun: %v", err)
	}
	return s
}

func newManager(fake *commandtest.Fake, env map[string]string) *Manager {
	logger, _ := test.NewNullLogger()
	m := NewManager(fake, logger)
	m.Getenv = func(k string) string { return env[k] }
	m.PollInterval = 10 * time.Millisecond
	return m
}

func TestRunArgs_CredentialsFromEnv(t *testing.T) {
	s := runSettings(t, map[string]string{config.KeyEnvironment: "dev"})
	m := newManager(commandtest.NewFake(), map[string]string{
		"AWS_ACCESS_KEY_ID":     "AKIA",
		"AWS_SECRET_ACCESS_KEY": "secret",
	})

	got, err := m.RunArgs(s)
	if err != nil {
		t.Fatalf("RunArgs: %v", err)
	}
	want := []string{
		"run", "-d",
		"-e", "ENVIRONMENT=dev",
		"-p", "127.0.0.1:5000:5000",
		"--name", "svc",
		"-e", "AWS_ACCESS_KEY_ID=AKIA",
		"-e", "AWS_SECRET_ACCESS_KEY=secret",
		"svc:1.2.3",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RunArgs() (-want +got):\n%s", diff)
	}
}

func TestRunArgs_CredentialsFileMount(t *testing.T) {
	s := runSettings(t, nil)
	m := newManager(commandtest.NewFake(), map[string]string{"HOME": "/home/ci"})

	got, err := m.RunArgs(s)
	if err != nil {
		t.Fatalf("RunArgs: %v", err)
	}
	want := []string{
		"run", "-d",
		"-e", "ENVIRONMENT=",
		"-p", "127.0.0.1:5000:5000",
		"--name", "svc",
		"-v", "/home/ci/.aws/credentials:/root/.aws/credentials:ro",
		"svc:1.2.3",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RunArgs() (-want +got):\n%s", diff)
	}
}

func TestRunArgs_EnvFileAndExtraArgs(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "run.env")
	if err := os.WriteFile(envFile, []byte("B=2\nA=\"one two\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := runSettings(t, map[string]string{
		config.KeyPropagateAWS: "false",
		config.KeyRunEnvFile:   envFile,
		config.KeyRunArgs:      "--memory 256m",
		config.KeyLocalPort:    "8080",
	})
	m := newManager(commandtest.NewFake(), nil)

	got, err := m.RunArgs(s)
	if err != nil {
		t.Fatalf("RunArgs: %v", err)
	}
	want := []string{
		"run", "-d",
		"-e", "ENVIRONMENT=",
		"-p", "127.0.0.1:8080:5000",
		"--name", "svc",
		"-e", "A=one two",
		"-e", "B=2",
		"--memory", "256m",
		"svc:1.2.3",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RunArgs() (-want +got):\n%s", diff)
	}
}

func TestStop_ToleratesMissingContainer(t *testing.T) {
	s := runSettings(t, nil)
	fake := commandtest.NewFake().
		Respond(commandtest.Response{ExitCode: 1, ErrorLines: []string{"Error response from daemon: Cannot kill container: svc: No such container: svc"}}, "docker", "kill").
		Respond(commandtest.Response{ExitCode: 1, ErrorLines: []string{"Error: No such container: svc"}}, "docker", "rm")
	m := newManager(fake, nil)

	for i := 0; i < 2; i++ {
		if err := m.Stop(context.Background(), s); err != nil {
			t.Fatalf("Stop #%d: %v", i, err)
		}
	}
	want := []string{"docker kill svc", "docker rm svc", "docker kill svc", "docker rm svc"}
	if diff := cmp.Diff(want, fake.Invocations()); diff != "" {
		t.Errorf("invocations (-want +got):\n%s", diff)
	}
}

func TestStop_OtherFailure(t *testing.T) {
	s := runSettings(t, nil)
	fake := commandtest.NewFake().
		Respond(commandtest.Response{ExitCode: 1, ErrorLines: []string{"permission denied"}}, "docker", "kill")
	m := newManager(fake, nil)

	err := m.Stop(context.Background(), s)
	var cmdErr *command.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected *CommandError, got %v", err)
	}
}

func TestWaitReady(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	s := runSettings(t, nil)
	s.LocalPort = ln.Addr().(*net.TCPAddr).Port
	s.ReadyTimeout = 2 * time.Second

	if err := newManager(commandtest.NewFake(), nil).WaitReady(context.Background(), s); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
}

func TestWaitReady_Timeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	s := runSettings(t, nil)
	s.LocalPort = port
	s.ReadyTimeout = 100 * time.Millisecond

	if err := newManager(commandtest.NewFake(), nil).WaitReady(context.Background(), s); err == nil {
		t.Fatal("expected timeout")
	}
}

func TestVerify_AlwaysStops(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer ln.Close()

	s := runSettings(t, map[string]string{config.KeyRunOnVerify: "true"})
	s.LocalPort = ln.Addr().(*net.TCPAddr).Port
	s.ReadyTimeout = time.Second
	fake := commandtest.NewFake()
	m := newManager(fake, map[string]string{"HOME": "/root"})

	checkErr := errors.New("tests failed")
	err = m.Verify(context.Background(), s, func(context.Context) error { return checkErr })
	if !errors.Is(err, checkErr) {
		t.Fatalf("Verify error = %v, want %v", err, checkErr)
	}

	inv := fake.Invocations()
	if len(inv) < 2 || inv[len(inv)-2] != "docker kill svc" || inv[len(inv)-1] != "docker rm svc" {
		t.Errorf("expected teardown at the end: %v", inv)
	}
}

func TestVerify_DisabledRunsCheckOnly(t *testing.T) {
	s := runSettings(t, nil)
	fake := commandtest.NewFake()
	m := newManager(fake, nil)

	var ran bool
	if err := m.Verify(context.Background(), s, func(context.Context) error { ran = true; return nil }); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ran {
		t.Error("check did not run")
	}
	if len(fake.Calls) != 0 {
		t.Errorf("expected no docker calls, got %v", fake.Invocations())
	}
}
