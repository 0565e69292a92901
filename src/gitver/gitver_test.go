package gitver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var sig = &object.Signature{Name: "ci", Email: "ci@example.com", When: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

func initRepo(t *testing.T) (string, *git.Repository, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	hash := commitFile(t, repo, dir, "README", "hello")
	return dir, repo, hash
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) plumbing.Hash {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatal(err)
	}
	hash, err := wt.Commit("update "+name, &git.CommitOptions{Author: sig})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func TestDetect_UntaggedHead(t *testing.T) {
	dir, _, hash := initRepo(t)

	v, err := Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if v.IsRelease {
		t.Error("untagged HEAD must not be a release")
	}
	if want := "0.0.0-dev+" + hash.String()[:7]; v.Version != want {
		t.Errorf("Version = %q, want %q", v.Version, want)
	}
	if _, ok := ProjectVersion(dir); ok {
		t.Error("ProjectVersion should not report a version for untagged HEAD")
	}
}

func TestDetect_HighestTagAtHeadWins(t *testing.T) {
	dir, repo, hash := initRepo(t)
	for _, tag := range []string{"v1.2.3", "1.10.0", "not-a-version"} {
		if _, err := repo.CreateTag(tag, hash, nil); err != nil {
			t.Fatalf("tag %s: %v", tag, err)
		}
	}

	v, err := Detect(dir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !v.IsRelease || v.Version != "1.10.0" || v.Tag != "1.10.0" {
		t.Errorf("got %+v, want release 1.10.0", v)
	}
	if v.Major != 1 || v.Minor != 10 || v.Patch != 0 {
		t.Errorf("parts = %d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

func TestDetect_AnnotatedTag(t *testing.T) {
	dir, repo, hash := initRepo(t)
	if _, err := repo.CreateTag("v2.0.0-rc.1", hash, &git.CreateTagOptions{Tagger: sig, Message: "rc"}); err != nil {
		t.Fatalf("tag: %v", err)
	}

	version, ok := ProjectVersion(dir)
	if !ok || version != "2.0.0-rc.1" {
		t.Errorf("ProjectVersion = %q, %v", version, ok)
	}
}

func TestDetect_TagOnOlderCommitIgnored(t *testing.T) {
	dir, repo, hash := initRepo(t)
	if _, err := repo.CreateTag("v1.0.0", hash, nil); err != nil {
		t.Fatal(err)
	}
	commitFile(t, repo, dir, "CHANGELOG", "next")

	if _, ok := ProjectVersion(dir); ok {
		t.Error("tag on an older commit must not version HEAD")
	}
}

func TestDetect_FromSubdirectory(t *testing.T) {
	dir, repo, hash := initRepo(t)
	if _, err := repo.CreateTag("v0.3.0", hash, nil); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "src", "main")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	if version, ok := ProjectVersion(sub); !ok || version != "0.3.0" {
		t.Errorf("ProjectVersion(sub) = %q, %v", version, ok)
	}
}

func TestDetect_NotARepository(t *testing.T) {
	if _, err := Detect(t.TempDir()); err == nil {
		t.Error("expected error outside a repository")
	}
}
