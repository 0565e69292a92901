package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/config"
	"github.com/stagehand-ci/stagehand/src/gitver"
	"github.com/stagehand-ci/stagehand/src/output"
	"github.com/stagehand-ci/stagehand/src/registry"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and required tools",
	Long: `Validate the resolved configuration and check that the external tools
the docker commands call are installed. Only a missing container engine is
fatal; aws and pip are needed for ECR and dependency gathering respectively.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout
	start := time.Now()

	sess, err := newSession()
	if err != nil {
		return err
	}

	sec := output.NewSection(w, "Project", 0, color)
	sec.KV("name", output.Bold(sess.project.Name, color))
	sec.KV("version", sess.project.Version)
	sec.KV("root", sess.project.RootDir)
	sec.KV("target", sess.project.TargetDir)
	sec.KV("dist", sess.project.DistDir)
	if cfg.Path != "" {
		sec.KV("config", cfg.Path)
	}
	if meta := gitver.DetectProject(sess.project.RootDir); meta != nil {
		sec.KV("remote", meta.URL)
	}
	if v, err := gitver.Detect(sess.project.RootDir); err == nil {
		sec.KV("git", fmt.Sprintf("%s @ %s", v.Version, v.SHA))
	}
	if m, err := registry.ReadManifest(filepath.Join(sess.project.TargetDir, config.ManifestFile)); err == nil {
		sec.KV("published", m.ArtifactPath+":"+m.ArtifactIdentifier)
	}
	sec.Close()

	prereqs := []command.Prerequisite{
		{Executable: props.String(config.KeyDockerExecutable, "docker"), Caller: "docker package"},
		{Executable: props.String(config.KeyAWSExecutable, "aws"), Caller: "ecr bootstrap"},
		{Executable: props.String(config.KeyPipExecutable, "pip"), Caller: "dependency gathering"},
	}
	errs := command.CheckAll(ctx, sess.runner, prereqs)

	sec = output.NewSection(w, "Tools", time.Since(start), color)
	for i, p := range prereqs {
		status, detail := "success", "available"
		if errs[i] != nil {
			status, detail = "failed", errs[i].Error()
			if i > 0 {
				status = "skipped"
			}
		}
		output.RowStatus(sec, p.Executable, detail, status, color)
	}
	sec.Close()

	if errs[0] != nil {
		return errors.New("container engine is not available")
	}
	return nil
}
