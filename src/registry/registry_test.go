package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAll_IncludesBuiltins(t *testing.T) {
	if diff := cmp.Diff([]string{"credentials", "ecr"}, All()); diff != "" {
		t.Errorf("All() (-want +got):\n%s", diff)
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, err := Lookup("harbor"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("ecr", func() Bootstrapper { return &ecrBootstrap{} })
}

func TestMatching(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   []string
	}{
		{"ecr", Target{Registry: "1.dkr.ecr.eu-west-1.amazonaws.com"}, []string{"ecr"}},
		{"plain", Target{Registry: "docker.io/library"}, nil},
		{"credentials", Target{Registry: "ghcr.io/org", Credentials: "GHCR"}, []string{"credentials"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, b := range Matching(tt.target) {
				got = append(got, b.Name())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Matching() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeTags(t *testing.T) {
	if diff := cmp.Diff([]string{"1.2.3", "latest"}, ComputeTags("1.2.3", true)); diff != "" {
		t.Errorf("latest enabled (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1.2.3"}, ComputeTags("1.2.3", false)); diff != "" {
		t.Errorf("latest disabled (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"latest", "latest"}, ComputeTags("latest", true)); diff != "" {
		t.Errorf("version latest (-want +got):\n%s", diff)
	}
}

func TestParsePushDigest(t *testing.T) {
	hex := "4f53cda18c2baa0c0354bb5f9a3ecbe5ed12ab4d8e11ba873c2f11161202b945"
	lines := []string{
		"The push refers to repository [reg.example/svc]",
		"5f70bf18a086: Pushed",
		"1.2.3: digest: sha256:" + hex + " size: 528",
	}
	got := ParsePushDigest(lines)
	if got.String() != "sha256:"+hex {
		t.Errorf("ParsePushDigest() = %q", got)
	}
	if got := ParsePushDigest([]string{"digest: sha256:nothex"}); got != "" {
		t.Errorf("expected empty digest, got %q", got)
	}
}
