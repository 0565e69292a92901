package cmd

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagehand-ci/stagehand/src/build"
	"github.com/stagehand-ci/stagehand/src/config"
	"github.com/stagehand-ci/stagehand/src/output"
)

var dpDryRun bool

var dockerPackageCmd = &cobra.Command{
	Use:   "package",
	Short: "Build the project's image in two stages",
	Long: `Build the primary stage from the project's docker directory, stage the
distributable, render a Dockerfile around it and build the final image.`,
	RunE: runDockerPackage,
}

func init() {
	dockerPackageCmd.Flags().BoolVar(&dpDryRun, "dry-run", false, "show the plan and rendered Dockerfile without building")

	dockerCmd.AddCommand(dockerPackageCmd)
}

func runDockerPackage(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout

	sess, err := newSession()
	if err != nil {
		return err
	}
	settings, err := config.ResolvePackage(sess.project, props)
	if err != nil {
		return err
	}

	output.ContextBlock(w, append(projectContext(sess.project), output.CIContext()...))

	if dpDryRun {
		return renderPackagePlan(w, settings, color)
	}

	_, err = packageImage(ctx, w, sess, settings, false, color)
	return err
}

// packageImage runs the package pipeline and renders its summary. When
// collapsed is set the CI log section starts folded.
func packageImage(ctx context.Context, w io.Writer, sess *session, settings config.PackageSettings, collapsed, color bool) (*build.PackageResult, error) {
	if collapsed {
		output.SectionStartCollapsed(w, "stagehand_package", "Package")
	} else {
		output.SectionStart(w, "stagehand_package", "Package")
	}
	builder := build.NewBuilder(sess.runner, sess.log)
	result, err := builder.Package(ctx, settings)
	output.SectionEnd(w, "stagehand_package")
	if result == nil {
		return nil, err
	}

	sec := output.NewSection(w, "Package", result.Duration, color)
	for _, step := range result.Steps {
		detail := formatStepDuration(step.Duration)
		if step.Error != nil {
			detail = step.Error.Error()
		}
		output.RowStatus(sec, step.Name, detail, step.Status, color)
	}
	if len(result.Secrets) > 0 {
		sec.Separator()
		var warnings []string
		for _, f := range result.Secrets {
			warnings = append(warnings, f.String())
		}
		output.RowWarnings(sec, warnings, color)
	}
	sec.Separator()
	sec.KV("image", result.Image.String())
	sec.KV("dockerfile", result.BuildFile)
	sec.KV("logs", sess.project.DockerLogDir())
	sec.Close()

	return result, err
}

func renderPackagePlan(w io.Writer, settings config.PackageSettings, color bool) error {
	plan := build.Plan(settings)
	rendered := build.Render(plan.BuildFile)

	sec := output.NewSection(w, "Plan", 0, color)
	for _, step := range []build.BuildStep{plan.Primary, plan.Secondary} {
		sec.KV(step.Name, settings.DockerExecutable+" "+strings.Join(step.Args(), " "))
	}
	sec.KV("staging", plan.StagingDir)
	sec.KV("dist file", plan.DistFilePath)
	sec.KV("template", plan.BuildFile.Kind.String())
	if plan.Gather {
		sec.KV("requirements", settings.RequirementsFile)
	}
	sec.Separator()
	for _, line := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
		sec.Row("%s", output.Dimmed(line, color))
	}
	sec.Close()
	return nil
}

func projectContext(p config.ProjectSettings) []output.KV {
	return []output.KV{
		{Key: "project", Value: p.Name},
		{Key: "version", Value: p.Version},
	}
}

func formatStepDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.Round(time.Millisecond).String()
}
