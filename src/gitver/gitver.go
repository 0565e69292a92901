// Package gitver derives a project version from git tags. A semver tag that
// points exactly at HEAD is a release version; anything else is a dev build.
package gitver

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// VersionInfo holds resolved version metadata from git.
type VersionInfo struct {
	Version    string // "1.2.3", "1.2.3-rc.1", or "0.0.0-dev+abc1234" when HEAD is untagged
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string
	Tag        string // the tag as written, e.g. "v1.2.3"
	SHA        string // short HEAD sha
	Branch     string
	IsRelease  bool // true if a semver tag points at HEAD
}

// Detect resolves version info for the repository containing rootDir.
// When several semver tags point at HEAD the highest wins.
func Detect(rootDir string) (*VersionInfo, error) {
	repo, err := git.PlainOpenWithOptions(rootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	v := &VersionInfo{SHA: head.Hash().String()[:7]}
	if head.Name().IsBranch() {
		v.Branch = head.Name().Short()
	}

	best, tag, err := highestTagAt(repo, head.Hash())
	if err != nil {
		return nil, err
	}
	if best == nil {
		v.Version = fmt.Sprintf("0.0.0-dev+%s", v.SHA)
		return v, nil
	}

	v.Version = best.String()
	v.Major = best.Major()
	v.Minor = best.Minor()
	v.Patch = best.Patch()
	v.Prerelease = best.Prerelease()
	v.Tag = tag
	v.IsRelease = true
	return v, nil
}

// ProjectVersion returns the release version at HEAD of the repository
// containing rootDir. ok is false outside a repository or when HEAD is not
// tagged with a semver tag.
func ProjectVersion(rootDir string) (version string, ok bool) {
	v, err := Detect(rootDir)
	if err != nil || !v.IsRelease {
		return "", false
	}
	return v.Version, true
}

func highestTagAt(repo *git.Repository, target plumbing.Hash) (*semver.Version, string, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, "", fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var best *semver.Version
	var bestTag string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		commit, err := tagCommit(repo, ref)
		if err != nil || commit != target {
			return nil
		}
		sv, err := semver.NewVersion(ref.Name().Short())
		if err != nil {
			return nil
		}
		if best == nil || sv.GreaterThan(best) {
			best = sv
			bestTag = ref.Name().Short()
		}
		return nil
	})
	return best, bestTag, err
}

// tagCommit resolves lightweight and annotated tags to the commit they name.
func tagCommit(repo *git.Repository, ref *plumbing.Reference) (plumbing.Hash, error) {
	obj, err := repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		c, err := obj.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return c.Hash, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return ref.Hash(), nil
	default:
		return plumbing.ZeroHash, err
	}
}
