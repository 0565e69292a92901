package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/config"
)

// PushedImage is a remote reference that was pushed successfully.
type PushedImage struct {
	Ref    string
	Digest digest.Digest // empty when the engine did not report one
}

// PublishResult captures the outcome of a publish run.
type PublishResult struct {
	RegistryPath      string
	Tags              []string
	Strategies        []string
	RepositoryCreated bool
	Pushed            []PushedImage
	Manifest          Manifest
	ManifestPath      string
	States            []Transition
	Duration          time.Duration
}

// Publisher tags and pushes a locally built image and records the result in
// the artifact manifest.
type Publisher struct {
	Runner command.Runner
	Log    logrus.FieldLogger
}

// NewPublisher creates a Publisher.
func NewPublisher(r command.Runner, log logrus.FieldLogger) *Publisher {
	return &Publisher{Runner: r, Log: log}
}

// Publish bootstraps the registry, then tags and pushes localRef under every
// computed tag, in order, and writes the manifest. localRef is used verbatim
// as the source of every docker tag. The first failure stops the run;
// nothing is retried.
func (p *Publisher) Publish(ctx context.Context, s config.PublishSettings, localRef string) (*PublishResult, error) {
	start := time.Now()
	var states trail
	states.enter(StateIdle)

	res := &PublishResult{
		RegistryPath: s.RegistryPath(),
		Tags:         ComputeTags(s.Project.Version, s.TagAsLatest),
		ManifestPath: s.ManifestPath,
	}
	finish := func(err error) (*PublishResult, error) {
		if err != nil {
			states.enter(StateFailed)
		} else {
			states.enter(StateDone)
		}
		res.States = states
		res.Duration = time.Since(start)
		return res, err
	}

	if err := command.CheckExecutable(ctx, p.Runner, s.DockerExecutable, "docker push"); err != nil {
		return finish(err)
	}

	target := TargetFor(s)
	strategies := Matching(target)

	var authenticators []Authenticator
	var ensurers []RepositoryEnsurer
	for _, b := range strategies {
		res.Strategies = append(res.Strategies, b.Name())
		if a, ok := b.(Authenticator); ok {
			authenticators = append(authenticators, a)
		}
		if e, ok := b.(RepositoryEnsurer); ok && target.EnsureRepository {
			ensurers = append(ensurers, e)
		}
	}

	if len(authenticators) > 0 {
		states.enter(StateAuthenticating)
		p.Log.Infof("authenticating to %s", s.Registry)
		for _, a := range authenticators {
			if err := a.Authenticate(ctx, p.Runner, target); err != nil {
				return finish(err)
			}
		}
	}
	if len(ensurers) > 0 {
		for _, e := range ensurers {
			created, err := e.EnsureRepository(ctx, p.Runner, target)
			if err != nil {
				return finish(err)
			}
			if created {
				p.Log.Infof("created repository %s", s.Artifact)
				res.RepositoryCreated = true
			}
		}
		states.enter(StateRepositoryEnsured)
	}

	for i, tag := range res.Tags {
		remote := RemoteRef(res.RegistryPath, tag)

		states.enterAt(StateTagging, i)
		if _, err := p.Runner.Run(ctx, command.Command{
			Executable:     s.DockerExecutable,
			Args:           []string{"tag", localRef, remote},
			LogName:        "docker_tag_" + tag,
			FailureMessage: "Failed to tag image",
		}); err != nil {
			return finish(err)
		}

		states.enterAt(StatePushing, i)
		p.Log.Infof("pushing %s", remote)
		out, err := p.Runner.Run(ctx, command.Command{
			Executable:     s.DockerExecutable,
			Args:           []string{"push", remote},
			LogName:        "docker_push_" + tag,
			FailureMessage: fmt.Sprintf("Error pushing image to remote registry - %s", remote),
		})
		if err != nil {
			return finish(err)
		}
		res.Pushed = append(res.Pushed, PushedImage{Ref: remote, Digest: ParsePushDigest(out.Lines)})
	}

	res.Manifest = NewManifest(res.RegistryPath, s.Project.Version)
	if err := WriteManifest(s.ManifestPath, res.Manifest); err != nil {
		return finish(err)
	}
	states.enter(StateManifestWritten)

	return finish(nil)
}
