package build

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

var (
	// FROM [--platform=...] <image> [AS <name>]
	fromRe = regexp.MustCompile(`(?i)^FROM\s+(?:--platform=\S+\s+)?(\S+)(?:\s+AS\s+(\S+))?`)
	// ARG <name>[=<default>]
	argRe = regexp.MustCompile(`(?i)^ARG\s+(\S+?)(?:=.*)?$`)
	// EXPOSE <port>[/<proto>]
	exposeRe = regexp.MustCompile(`(?i)^EXPOSE\s+(.+)`)
)

// DockerfileInfo is what ParseDockerfile extracts from a Dockerfile.
type DockerfileInfo struct {
	Path   string
	Stages []Stage
	Args   []string
	Expose []string
}

// Stage describes a single FROM stage in a Dockerfile.
type Stage struct {
	Name      string // alias from "AS name", empty if unnamed
	BaseImage string
	Line      int
}

// HasArg reports whether the Dockerfile declares ARG name.
func (d *DockerfileInfo) HasArg(name string) bool {
	for _, a := range d.Args {
		if a == name {
			return true
		}
	}
	return false
}

// ParseDockerfile extracts stages, ARGs and exposed ports from a Dockerfile.
// Regex-based, not a full parser; line continuations are not joined.
func ParseDockerfile(path string) (*DockerfileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := &DockerfileInfo{Path: path}
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := fromRe.FindStringSubmatch(line); m != nil {
			info.Stages = append(info.Stages, Stage{BaseImage: m[1], Name: m[2], Line: lineNum})
			continue
		}
		if m := argRe.FindStringSubmatch(line); m != nil {
			info.Args = append(info.Args, m[1])
			continue
		}
		if m := exposeRe.FindStringSubmatch(line); m != nil {
			info.Expose = append(info.Expose, strings.Fields(m[1])...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return info, nil
}
