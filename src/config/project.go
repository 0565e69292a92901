package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultVersion is used when no other version source yields a value.
const DefaultVersion = "0.0.999"

// Detectors derive project identity from the working tree when the project
// file does not set it. Either may be nil.
type Detectors struct {
	Name    func(dir string) (string, bool)
	Version func(dir string) (string, bool)
}

// ProjectSettings is the resolved identity and directory layout of a project.
type ProjectSettings struct {
	Name    string
	Version string

	RootDir   string
	TargetDir string // dir_target
	DistDir   string // dir_dist
	LogsDir   string // dir_logs
}

// DockerLogDir is where per-command logs are written.
func (p ProjectSettings) DockerLogDir() string {
	return filepath.Join(p.LogsDir, "docker")
}

// ResolveProject derives project settings from the loaded config and the
// merged property set. Name precedence: project.name, detect.Name, the
// root directory name. Version precedence: project.version, build_number
// property, BUILD_NUMBER env, detect.Version, DefaultVersion.
func ResolveProject(cfg *Config, props Properties, rootDir string, detect Detectors) (ProjectSettings, error) {
	if rootDir == "" {
		rootDir = "."
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return ProjectSettings{}, fmt.Errorf("resolving project root: %w", err)
	}

	name := cfg.Project.Name
	if name == "" && detect.Name != nil {
		name, _ = detect.Name(absRoot)
	}
	if name == "" {
		name = filepath.Base(absRoot)
	}

	version := cfg.Project.Version
	if version == "" {
		version = props.String("build_number", os.Getenv("BUILD_NUMBER"))
	}
	if version == "" && detect.Version != nil {
		version, _ = detect.Version(absRoot)
	}
	if version == "" {
		version = DefaultVersion
	}

	ps := ProjectSettings{
		Name:    name,
		Version: version,
		RootDir: absRoot,
	}
	ps.TargetDir = projectDir(absRoot, cfg.Project.Dirs.Target, "target")
	ps.DistDir = projectDir(absRoot, cfg.Project.Dirs.Dist,
		filepath.Join(ps.TargetDir, "dist", fmt.Sprintf("%s-%s", name, version)))
	ps.LogsDir = projectDir(absRoot, cfg.Project.Dirs.Logs, filepath.Join(ps.TargetDir, "logs"))
	return ps, nil
}

func projectDir(root, configured, def string) string {
	dir := configured
	if dir == "" {
		dir = def
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Clean(dir)
}
