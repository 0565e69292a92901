package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagehand-ci/stagehand/src/config"
	"github.com/stagehand-ci/stagehand/src/container"
	"github.com/stagehand-ci/stagehand/src/output"
)

var dockerKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop and remove the local container",
	Long:  "Kill and remove the project's local container. A container that is already gone is not an error.",
	RunE:  runDockerKill,
}

func init() {
	dockerCmd.AddCommand(dockerKillCmd)
}

func runDockerKill(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	color := output.UseColor()

	sess, err := newSession()
	if err != nil {
		return err
	}
	settings, err := config.ResolveRun(sess.project, props)
	if err != nil {
		return err
	}

	start := time.Now()
	err = container.NewManager(sess.runner, sess.log).Stop(ctx, settings)
	status := "success"
	if err != nil {
		status = "failed"
	}
	output.PhaseResult(os.Stdout, "kill", status, settings.ContainerName, time.Since(start), color)
	return err
}
