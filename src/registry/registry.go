// Package registry publishes locally built images to a container registry.
// Registry-specific setup (login, repository creation) is done by bootstrap
// strategies selected by matching the registry host, so the publisher itself
// is the same for ECR, credential-based registries and anything registered
// later.
package registry

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/config"
)

// Target is the registry destination a bootstrap strategy prepares.
type Target struct {
	Registry string
	Artifact string

	// Region is passed to the cloud CLI when set.
	Region string
	// Credentials is an env var prefix: P → P_USER / P_PASS.
	Credentials string
	// EnsureRepository enables repository creation where supported.
	EnsureRepository bool

	DockerExecutable string
	AWSExecutable    string
}

// TargetFor derives the bootstrap target from publish settings.
func TargetFor(s config.PublishSettings) Target {
	return Target{
		Registry:         s.Registry,
		Artifact:         s.Artifact,
		Region:           s.ECRRegion,
		Credentials:      s.Credentials,
		EnsureRepository: s.EnsureECRRepository,
		DockerExecutable: s.DockerExecutable,
		AWSExecutable:    s.AWSExecutable,
	}
}

// Bootstrapper prepares a registry before images are pushed to it. A
// bootstrapper implements Authenticator, RepositoryEnsurer or both.
type Bootstrapper interface {
	Name() string
	Matches(t Target) bool
}

// Authenticator logs the container engine into the target registry.
type Authenticator interface {
	Authenticate(ctx context.Context, r command.Runner, t Target) error
}

// RepositoryEnsurer makes sure the target repository exists. It reports
// whether the repository had to be created.
type RepositoryEnsurer interface {
	EnsureRepository(ctx context.Context, r command.Runner, t Target) (created bool, err error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Bootstrapper{}
)

// Register adds a bootstrapper constructor to the global registry.
// Called from init() in each strategy file.
func Register(name string, constructor func() Bootstrapper) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("registry: duplicate bootstrap registration: %s", name))
	}
	registry[name] = constructor
}

// Lookup returns a new instance of the named bootstrapper.
func Lookup(name string) (Bootstrapper, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("registry: unknown bootstrap strategy: %s", name)
	}
	return ctor(), nil
}

// All returns sorted names of all registered bootstrappers.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Matching returns the bootstrappers that apply to t, in name order.
func Matching(t Target) []Bootstrapper {
	var out []Bootstrapper
	for _, name := range All() {
		b, err := Lookup(name)
		if err != nil {
			continue
		}
		if b.Matches(t) {
			out = append(out, b)
		}
	}
	return out
}

// resolveCredentials reads USER and PASS from env vars using the configured
// prefix. Returns empty strings if no prefix or vars are unset.
func resolveCredentials(prefix string) (user, pass string) {
	if prefix == "" {
		return "", ""
	}
	p := strings.ToUpper(prefix)
	return os.Getenv(p + "_USER"), os.Getenv(p + "_PASS")
}
