package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/config"
	"github.com/stagehand-ci/stagehand/src/container"
	"github.com/stagehand-ci/stagehand/src/output"
)

var verifyCmd = &cobra.Command{
	Use:   "verify -- <command> [args...]",
	Short: "Run a check against the local container",
	Long: `Run a verification command. With run_docker_on_verify=true the image is
started first, the command runs once the port accepts connections, and the
container is always removed afterwards.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	check := func(ctx context.Context) error {
		res, err := sess.runner.Run(ctx, command.Command{
			Executable:     args[0],
			Args:           args[1:],
			LogName:        "verify",
			FailureMessage: "Verification command failed",
			Dir:            sess.project.RootDir,
		})
		if res != nil {
			for _, line := range res.Lines {
				fmt.Fprintln(w, line)
			}
		}
		return err
	}

	start := time.Now()
	err = container.NewManager(sess.runner, sess.log).Verify(ctx, settings, check)
	status := "success"
	detail := args[0]
	if err != nil {
		status = "failed"
		detail = err.Error()
	}
	output.PhaseResult(w, "verify", status, detail, time.Since(start), color)
	return err
}
