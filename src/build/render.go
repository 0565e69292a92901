package build

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// BuildFileKind selects the Dockerfile template.
type BuildFileKind int

const (
	// BuildFilePlain copies the distributable and installs it.
	BuildFilePlain BuildFileKind = iota
	// BuildFileWithLocalDeps also copies locally gathered dependencies and
	// installs from them without network access to an index.
	BuildFileWithLocalDeps
)

func (k BuildFileKind) String() string {
	if k == BuildFileWithLocalDeps {
		return "local-deps"
	}
	return "plain"
}

const plainTemplate = `FROM {build_image}
MAINTAINER {maintainer_name}
COPY {dist_file} .
RUN {prepare_env_cmd}
RUN {package_cmd}
`

const localDepsTemplate = `FROM {build_image}
MAINTAINER {maintainer_name}
RUN mkdir python-install
COPY {dist_file} /python-install
COPY {dep_dir} /python-install/dep
RUN {prepare_env_cmd}
RUN {package_cmd}
`

// BuildFile holds the values substituted into a Dockerfile template.
type BuildFile struct {
	Kind          BuildFileKind
	BuildImage    string
	Maintainer    string
	DistFile      string
	PrepareEnvCmd string
	PackageCmd    string
}

// DepDir is the dependency directory, relative to the dist file's directory.
func (b BuildFile) DepDir() string {
	return path.Join(path.Dir(b.DistFile), "dep")
}

// Render substitutes the placeholders of the template selected by Kind.
// Values are inserted literally, with no escaping.
func Render(b BuildFile) string {
	tmpl := plainTemplate
	if b.Kind == BuildFileWithLocalDeps {
		tmpl = localDepsTemplate
	}
	r := strings.NewReplacer(
		"{build_image}", b.BuildImage,
		"{maintainer_name}", b.Maintainer,
		"{dist_file}", b.DistFile,
		"{dep_dir}", b.DepDir(),
		"{prepare_env_cmd}", b.PrepareEnvCmd,
		"{package_cmd}", b.PackageCmd,
	)
	return r.Replace(tmpl)
}

// WriteBuildFile writes content to <dir>/Dockerfile and returns the path.
func WriteBuildFile(dir, content string) (string, error) {
	p := filepath.Join(dir, "Dockerfile")
	if err := os.WriteFile(p, []byte(content), 0o755); err != nil {
		return "", err
	}
	// WriteFile only applies the mode on create and is subject to umask.
	if err := os.Chmod(p, 0o755); err != nil {
		return "", err
	}
	return p, nil
}
