package config

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestProperties_EmptyIsUnset(t *testing.T) {
	p := NewProperties(map[string]string{"a": "", "b": "x"})

	if _, ok := p.Lookup("a"); ok {
		t.Error("empty value should be treated as unset")
	}
	if got := p.String("a", "def"); got != "def" {
		t.Errorf("String(a) = %q, want def", got)
	}
	if got := p.String("b", "def"); got != "x" {
		t.Errorf("String(b) = %q, want x", got)
	}
	if diff := cmp.Diff([]string{"b"}, p.Keys()); diff != "" {
		t.Errorf("Keys() (-want +got):\n%s", diff)
	}
}

func TestProperties_MergeDoesNotMutate(t *testing.T) {
	base := NewProperties(map[string]string{"docker_push_img": "svc"})
	merged := base.Merge(map[string]string{"docker_push_img": "other", "environment": "dev"})

	if got := base.String("docker_push_img", ""); got != "svc" {
		t.Errorf("base mutated: %q", got)
	}
	if got := merged.String("docker_push_img", ""); got != "other" {
		t.Errorf("merged = %q, want other", got)
	}
	if got := merged.String("environment", ""); got != "dev" {
		t.Errorf("merged environment = %q", got)
	}
}

func TestProperties_TypedGetters(t *testing.T) {
	p := NewProperties(map[string]string{
		"flag":    "false",
		"port":    "8080",
		"timeout": "45s",
		"seconds": "5",
		"bad":     "maybe",
	})

	if b, err := p.Bool("flag", true); err != nil || b {
		t.Errorf("Bool(flag) = %v, %v", b, err)
	}
	if b, err := p.Bool("missing", true); err != nil || !b {
		t.Errorf("Bool(missing) = %v, %v", b, err)
	}
	if n, err := p.Int("port", 1); err != nil || n != 8080 {
		t.Errorf("Int(port) = %d, %v", n, err)
	}
	if d, err := p.Duration("timeout", 0); err != nil || d != 45*time.Second {
		t.Errorf("Duration(timeout) = %v, %v", d, err)
	}
	if d, err := p.Duration("seconds", 0); err != nil || d != 5*time.Second {
		t.Errorf("Duration(seconds) = %v, %v", d, err)
	}

	_, err := p.Bool("bad", false)
	var invalid *InvalidPropertyError
	if !errors.As(err, &invalid) || invalid.Key != "bad" {
		t.Errorf("Bool(bad) error = %v, want *InvalidPropertyError", err)
	}
}

func TestProperties_Mandatory(t *testing.T) {
	p := NewProperties(nil)
	_, err := p.Mandatory("docker_push_registry")
	var missing *MissingPropertyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingPropertyError, got %v", err)
	}
	if missing.Key != "docker_push_registry" {
		t.Errorf("key = %q", missing.Key)
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"a=1", "b=x=y", "c="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"a": "1", "b": "x=y", "c": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseAssignments() (-want +got):\n%s", diff)
	}

	if _, err := ParseAssignments([]string{"novalue"}); err == nil {
		t.Error("expected error for missing '='")
	}
	if _, err := ParseAssignments([]string{"=v"}); err == nil {
		t.Error("expected error for empty key")
	}
}
