package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/stagehand-ci/stagehand/src/command"
)

func init() {
	Register("credentials", func() Bootstrapper { return &credentialsBootstrap{} })
}

// credentialsBootstrap logs in with a username and password taken from the
// environment, for registries that are not ECR.
type credentialsBootstrap struct{}

func (c *credentialsBootstrap) Name() string { return "credentials" }

// Matches when a credentials prefix is configured.
func (c *credentialsBootstrap) Matches(t Target) bool {
	return t.Credentials != ""
}

func (c *credentialsBootstrap) Authenticate(ctx context.Context, r command.Runner, t Target) error {
	user, pass := resolveCredentials(t.Credentials)
	if user == "" || pass == "" {
		p := strings.ToUpper(t.Credentials)
		return fmt.Errorf("registry credentials: %s_USER and %s_PASS must be set", p, p)
	}
	_, err := r.Run(ctx, command.Command{
		Executable:     t.DockerExecutable,
		Args:           []string{"login", "-u", user, "-p", pass, t.Registry},
		LogName:        "docker_login",
		FailureMessage: "Error authenticating",
	})
	return err
}
