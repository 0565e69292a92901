package gitver

import (
	"testing"

	"github.com/go-git/go-git/v5/config"
)

func TestRepoNameFromRemote(t *testing.T) {
	tests := []struct{ remote, want string }{
		{"git@gitlab.com:team/My-Service.git", "My-Service"},
		{"https://github.com/org/svc.git", "svc"},
		{"https://github.com/org/svc", "svc"},
		{"ssh://git@host:2222/group/sub/api.git", "api"},
	}
	for _, tt := range tests {
		if got := repoNameFromRemote(tt.remote); got != tt.want {
			t.Errorf("repoNameFromRemote(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}

func TestRemoteToHTTPS(t *testing.T) {
	if got := remoteToHTTPS("git@gitlab.com:team/svc.git"); got != "https://gitlab.com/team/svc" {
		t.Errorf("got %q", got)
	}
	if got := remoteToHTTPS("https://github.com/org/svc.git"); got != "https://github.com/org/svc" {
		t.Errorf("got %q", got)
	}
}

func TestProjectName(t *testing.T) {
	dir, repo, _ := initRepo(t)
	if _, ok := ProjectName(dir); ok {
		t.Fatal("no origin remote yet")
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"git@gitlab.com:team/My-Service.git"}}); err != nil {
		t.Fatal(err)
	}
	name, ok := ProjectName(dir)
	if !ok || name != "my-service" {
		t.Errorf("ProjectName = %q, %v", name, ok)
	}
	if pm := DetectProject(dir); pm == nil || pm.URL != "https://gitlab.com/team/My-Service" {
		t.Errorf("DetectProject = %+v", pm)
	}
}
