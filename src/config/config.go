package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFiles are the project files tried, in order, when no explicit
// path is given.
var DefaultConfigFiles = []string{".stagehand.yml", ".stagehand.yaml", ".stagehand.toml"}

// userConfigFile is resolved relative to the XDG config dirs.
const userConfigFile = "stagehand/config.yml"

// Config is the top-level stagehand configuration.
type Config struct {
	Project    ProjectConfig  `yaml:"project" toml:"project"`
	Properties map[string]any `yaml:"properties" toml:"properties"`

	// Path is the project file that was loaded, empty when none was found.
	Path string `yaml:"-" toml:"-"`
}

// ProjectConfig describes the project being packaged.
type ProjectConfig struct {
	Name    string     `yaml:"name" toml:"name"`
	Version string     `yaml:"version" toml:"version"`
	Dirs    DirsConfig `yaml:"dirs" toml:"dirs"`
}

// DirsConfig overrides the default build directory layout.
type DirsConfig struct {
	Target string `yaml:"target" toml:"target"`
	Dist   string `yaml:"dist" toml:"dist"`
	Logs   string `yaml:"logs" toml:"logs"`
}

// Load reads the user defaults file (if any) and the project file at path,
// layering the project file on top. If path is empty, the default project
// files are tried in order. Returns defaults if no file exists.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if userPath, err := xdg.SearchConfigFile(userConfigFile); err == nil {
		user, err := loadFile(userPath)
		if err != nil {
			return nil, err
		}
		cfg.merge(user)
	}

	if path == "" {
		for _, candidate := range DefaultConfigFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return cfg, nil
		}
	}

	project, err := loadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	cfg.merge(project)
	cfg.Path = path
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return cfg, nil
}

// merge layers the non-empty fields of other on top of c.
func (c *Config) merge(other *Config) {
	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&c.Project.Name, other.Project.Name)
	setIf(&c.Project.Version, other.Project.Version)
	setIf(&c.Project.Dirs.Target, other.Project.Dirs.Target)
	setIf(&c.Project.Dirs.Dist, other.Project.Dirs.Dist)
	setIf(&c.Project.Dirs.Logs, other.Project.Dirs.Logs)
	for k, v := range other.Properties {
		c.Properties[k] = v
	}
}

// Props converts the configured properties into an immutable property set.
// Non-string scalars are formatted with their default representation.
func (c *Config) Props() Properties {
	m := make(map[string]string, len(c.Properties))
	for k, v := range c.Properties {
		if v == nil {
			continue
		}
		m[k] = fmt.Sprint(v)
	}
	return NewProperties(m)
}

func defaults() *Config {
	return &Config{
		Properties: map[string]any{},
	}
}
