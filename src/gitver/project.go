package gitver

import (
	"strings"

	"github.com/go-git/go-git/v5"
)

// ProjectMeta holds project metadata resolved from the git remote.
type ProjectMeta struct {
	Name string // repo name (last path component of the origin remote)
	URL  string // origin remote, as https
}

// DetectProject resolves project metadata from the origin remote of the
// repository containing rootDir. Returns nil when there is no repository or
// no origin remote.
func DetectProject(rootDir string) *ProjectMeta {
	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	origin, err := repo.Remote("origin")
	if err != nil || len(origin.Config().URLs) == 0 {
		return nil
	}
	remote := origin.Config().URLs[0]
	return &ProjectMeta{
		Name: repoNameFromRemote(remote),
		URL:  remoteToHTTPS(remote),
	}
}

// ProjectName returns the lowercased repository name of the origin remote.
func ProjectName(rootDir string) (string, bool) {
	pm := DetectProject(rootDir)
	if pm == nil || pm.Name == "" {
		return "", false
	}
	return strings.ToLower(pm.Name), true
}

// repoNameFromRemote extracts the repository name from a git remote URL.
// Handles SSH (git@host:org/repo.git) and HTTPS (https://host/org/repo.git).
func repoNameFromRemote(remote string) string {
	remote = strings.TrimSuffix(remote, ".git")

	// SSH: git@host:org/repo
	if idx := strings.LastIndex(remote, ":"); idx != -1 && !strings.Contains(remote, "://") {
		remote = remote[idx+1:]
	}

	if idx := strings.LastIndex(remote, "/"); idx != -1 {
		return remote[idx+1:]
	}
	return remote
}

// remoteToHTTPS converts a git remote URL to HTTPS format for display.
func remoteToHTTPS(remote string) string {
	remote = strings.TrimSuffix(remote, ".git")
	if strings.HasPrefix(remote, "https://") || strings.HasPrefix(remote, "http://") {
		return remote
	}
	// SSH: git@host:org/repo → https://host/org/repo
	if idx := strings.Index(remote, "@"); idx != -1 {
		rest := strings.Replace(remote[idx+1:], ":", "/", 1)
		return "https://" + rest
	}
	return remote
}
