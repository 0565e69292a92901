package registry

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/stagehand-ci/stagehand/src/command"
)

func init() {
	Register("ecr", func() Bootstrapper { return &ecrBootstrap{} })
}

// ecrBootstrap logs in to an AWS ECR registry with a token from the aws CLI
// and creates the repository on first push.
type ecrBootstrap struct{}

func (e *ecrBootstrap) Name() string { return "ecr" }

// Matches any registry whose host contains "ecr".
func (e *ecrBootstrap) Matches(t Target) bool {
	return strings.Contains(t.Registry, "ecr")
}

func (e *ecrBootstrap) regionArgs(t Target, args ...string) []string {
	if t.Region != "" {
		args = append(args, "--region", t.Region)
	}
	return args
}

func (e *ecrBootstrap) Authenticate(ctx context.Context, r command.Runner, t Target) error {
	if err := command.CheckExecutable(ctx, r, t.AWSExecutable, "ecr registry login"); err != nil {
		return err
	}

	res, err := r.Run(ctx, command.Command{
		Executable:     t.AWSExecutable,
		Args:           e.regionArgs(t, "ecr", "get-login-password"),
		LogName:        "docker_ecr_get_token",
		FailureMessage: "Error getting token",
	})
	if err != nil {
		return err
	}
	token := firstLine(res.Lines)
	if token == "" {
		return errors.New("Error getting token: aws returned no output")
	}

	_, err = r.Run(ctx, command.Command{
		Executable:     t.DockerExecutable,
		Args:           []string{"login", "-u", "AWS", "-p", token, t.Registry},
		LogName:        "docker_ecr_docker_login",
		FailureMessage: "Error authenticating",
	})
	return err
}

func (e *ecrBootstrap) EnsureRepository(ctx context.Context, r command.Runner, t Target) (bool, error) {
	if !t.EnsureRepository {
		return false, nil
	}

	outcome, _, err := command.Probe(ctx, r, command.Command{
		Executable: t.AWSExecutable,
		Args:       e.regionArgs(t, "ecr", "describe-repositories", "--repository-names", t.Artifact),
		LogName:    "docker_ecr_registry_discover",
	})
	switch outcome {
	case command.ProbeOK:
		return false, nil
	case command.ProbeFailed:
		return false, errors.Wrap(err, "describing ecr repository")
	}

	_, err = r.Run(ctx, command.Command{
		Executable:     t.AWSExecutable,
		Args:           e.regionArgs(t, "ecr", "create-repository", "--repository-name", t.Artifact),
		LogName:        "docker_ecr_registry_create",
		FailureMessage: "Unable to create ecr registry",
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func firstLine(lines []string) string {
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			return s
		}
	}
	return ""
}
