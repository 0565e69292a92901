package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagehand-ci/stagehand/src/build"
	"github.com/stagehand-ci/stagehand/src/config"
	"github.com/stagehand-ci/stagehand/src/output"
	"github.com/stagehand-ci/stagehand/src/registry"
)

var dpushSkipPackage bool

var dockerPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Package, tag and push the image to a registry",
	Long: `Package the image, bootstrap the registry (ECR login and repository,
environment credentials), tag and push the image under its version and
optionally latest, and write target/artifact.json.`,
	RunE: runDockerPush,
}

func init() {
	dockerPushCmd.Flags().BoolVar(&dpushSkipPackage, "skip-package", false, "push the existing local image without packaging first")

	dockerCmd.AddCommand(dockerPushCmd)
}

func runDockerPush(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout

	sess, err := newSession()
	if err != nil {
		return err
	}
	// Publish settings resolve first so a missing registry fails before
	// anything is built.
	publish, err := config.ResolvePublish(sess.project, props)
	if err != nil {
		return err
	}

	output.ContextBlock(w, append(projectContext(sess.project),
		output.KV{Key: "registry", Value: publish.RegistryPath()}))

	start := time.Now()
	var phases []phase

	var local string
	if dpushSkipPackage {
		local = config.LocalImage(sess.project, props)
		if _, err := build.ParseImageRef(local); err != nil {
			return err
		}
		phases = append(phases, phase{"package", "skipped", local})
	} else {
		settings, err := config.ResolvePackage(sess.project, props)
		if err != nil {
			return err
		}
		pkg, err := packageImage(ctx, w, sess, settings, true, color)
		if err != nil {
			return err
		}
		local = pkg.LocalRef
		phases = append(phases, phase{"package", "success", local})
	}

	output.SectionStart(w, "stagehand_publish", "Publish")
	publisher := registry.NewPublisher(sess.runner, sess.log)
	result, err := publisher.Publish(ctx, publish, local)
	output.SectionEnd(w, "stagehand_publish")
	if result != nil {
		renderPublishResult(w, result, err, color)
	}

	status := "success"
	tags := registry.ComputeTags(publish.Project.Version, publish.TagAsLatest)
	detail := fmt.Sprintf("%s to %s", strings.Join(tags, ", "), publish.RegistryPath())
	if err != nil {
		status, detail = "failed", err.Error()
	}
	phases = append(phases, phase{"publish", status, detail})
	renderSummary(w, phases, time.Since(start), status, color)
	return err
}

type phase struct {
	name, status, detail string
}

func renderSummary(w io.Writer, phases []phase, elapsed time.Duration, status string, color bool) {
	sec := output.NewSection(w, "Summary", 0, color)
	for _, p := range phases {
		output.SummaryRow(w, p.name, p.status, p.detail, color)
	}
	sec.Separator()
	output.SummaryTotal(w, elapsed, status, color)
	sec.Close()
}

func renderPublishResult(w io.Writer, result *registry.PublishResult, pubErr error, color bool) {
	sec := output.NewSection(w, "Publish", result.Duration, color)
	if len(result.Strategies) > 0 {
		sec.KV("bootstrap", strings.Join(result.Strategies, ", "))
	}
	if result.RepositoryCreated {
		sec.KV("repository", "created "+result.RegistryPath)
	}
	for _, img := range result.Pushed {
		output.RowStatus(sec, img.Ref, img.Digest.String(), "success", color)
	}
	if pubErr != nil {
		sec.Separator()
		output.RowStatus(sec, "failed", pubErr.Error(), "failed", color)
	} else {
		sec.Separator()
		sec.KV("manifest", result.ManifestPath)
	}
	sec.Close()

	if len(result.States) > 0 {
		var trail []string
		for _, t := range result.States {
			trail = append(trail, t.String())
		}
		sec := output.NewSection(w, "States", 0, color)
		sec.Row("%s", output.Dimmed(strings.Join(trail, " → "), color))
		sec.Close()
	}
}
