package cmd

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagehand-ci/stagehand/src/config"
	"github.com/stagehand-ci/stagehand/src/container"
	"github.com/stagehand-ci/stagehand/src/output"
)

var drunNoWait bool

var dockerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the packaged image as a local container",
	Long: `Start the packaged image detached, publishing the service port on
127.0.0.1, and wait until the port accepts connections.`,
	RunE: runDockerRun,
}

func init() {
	dockerRunCmd.Flags().BoolVar(&drunNoWait, "no-wait", false, "return as soon as the container is started")

	dockerCmd.AddCommand(dockerRunCmd)
}

func runDockerRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout

	sess, err := newSession()
	if err != nil {
		return err
	}
	settings, err := config.ResolveRun(sess.project, props)
	if err != nil {
		return err
	}

	start := time.Now()
	mgr := container.NewManager(sess.runner, sess.log)
	id, err := mgr.Start(ctx, settings)
	if err != nil {
		return err
	}
	status := "success"
	if !drunNoWait {
		if err = mgr.WaitReady(ctx, settings); err != nil {
			status = "failed"
		}
	}

	sec := output.NewSection(w, "Run", time.Since(start), color)
	sec.KV("container", settings.ContainerName)
	sec.KV("id", shortID(id))
	sec.KV("image", settings.Image)
	output.RowStatus(sec, "listening", "127.0.0.1:"+strconv.Itoa(settings.LocalPort), status, color)
	sec.Close()
	return err
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
