package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func isolateUserConfig(t *testing.T) string {
	t.Helper()
	t.Cleanup(xdg.Reload)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	isolateUserConfig(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "" || len(cfg.Properties) != 0 {
		t.Errorf("expected empty defaults, got %+v", cfg)
	}
}

func TestLoad_YAML(t *testing.T) {
	isolateUserConfig(t)
	path := writeTempFile(t, t.TempDir(), ".stagehand.yml", `
project:
  name: svc
  version: 1.2.3
properties:
  docker_push_registry: 123.dkr.ecr.us-east-1.amazonaws.com
  docker_push_tag_as_latest: false
  run_docker_local_port: 8080
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "svc" || cfg.Project.Version != "1.2.3" {
		t.Errorf("project = %+v", cfg.Project)
	}
	props := cfg.Props()
	if got := props.String(KeyPushRegistry, ""); got != "123.dkr.ecr.us-east-1.amazonaws.com" {
		t.Errorf("registry = %q", got)
	}
	if latest, err := props.Bool(KeyTagAsLatest, true); err != nil || latest {
		t.Errorf("tag_as_latest = %v, %v", latest, err)
	}
	if port, err := props.Int(KeyLocalPort, 0); err != nil || port != 8080 {
		t.Errorf("local port = %d, %v", port, err)
	}
}

func TestLoad_TOML(t *testing.T) {
	isolateUserConfig(t)
	path := writeTempFile(t, t.TempDir(), ".stagehand.toml", `
[project]
name = "svc"

[project.dirs]
target = "build"

[properties]
docker_push_img = "team/svc"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Name != "svc" || cfg.Project.Dirs.Target != "build" {
		t.Errorf("project = %+v", cfg.Project)
	}
	if got := cfg.Props().String(KeyPushImage, ""); got != "team/svc" {
		t.Errorf("docker_push_img = %q", got)
	}
}

func TestLoad_UserDefaultsAreOverriddenByProject(t *testing.T) {
	userDir := isolateUserConfig(t)
	if err := os.MkdirAll(filepath.Join(userDir, "stagehand"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTempFile(t, filepath.Join(userDir, "stagehand"), "config.yml", `
properties:
  docker_push_registry: user.example
  environment: dev
`)
	path := writeTempFile(t, t.TempDir(), ".stagehand.yml", `
properties:
  docker_push_registry: project.example
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	props := cfg.Props()
	if got := props.String(KeyPushRegistry, ""); got != "project.example" {
		t.Errorf("registry = %q, want project.example", got)
	}
	if got := props.String(KeyEnvironment, ""); got != "dev" {
		t.Errorf("environment = %q, want dev", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolateUserConfig(t)
	path := writeTempFile(t, t.TempDir(), ".stagehand.yml", "project: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
