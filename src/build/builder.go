package build

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/config"
)

// ErrSecretsFound is returned when the rendered Dockerfile contains likely
// credentials and the build is configured to fail on them.
var ErrSecretsFound = errors.New("rendered Dockerfile contains potential secrets")

// Builder runs the two-stage image build. The staging directory is shared
// per project version, so concurrent builds of the same project are not
// supported.
type Builder struct {
	Runner command.Runner
	Log    logrus.FieldLogger
}

// NewBuilder creates a Builder.
func NewBuilder(r command.Runner, log logrus.FieldLogger) *Builder {
	return &Builder{Runner: r, Log: log}
}

// Package builds the primary stage from the user's Dockerfile, stages the
// distributable (and optionally its dependencies), renders the secondary
// Dockerfile on top of the primary image and builds the final image.
func (b *Builder) Package(ctx context.Context, s config.PackageSettings) (*PackageResult, error) {
	start := time.Now()

	image, err := ParseImageRef(s.BuildImage)
	if err != nil {
		return nil, err
	}
	plan := Plan(s)
	result := &PackageResult{
		LocalRef:  s.BuildImage,
		Image:     image,
		TempImage: plan.Primary.Tag,
	}
	defer func() { result.Duration = time.Since(start) }()

	if err := command.CheckExecutable(ctx, b.Runner, s.DockerExecutable, "docker package"); err != nil {
		return result, err
	}
	b.preflight(s, plan)

	steps := []struct {
		name string
		run  func() error
	}{
		{"primary", func() error { return b.build(ctx, s, plan.Primary) }},
		{"staging", func() error { return b.stage(plan) }},
		{"dependencies", func() error {
			if !plan.Gather {
				return errSkipped
			}
			return GatherDependencies(ctx, b.Runner, s)
		}},
		{"dockerfile", func() error { return b.render(s, plan, result) }},
		{"secondary", func() error { return b.build(ctx, s, plan.Secondary) }},
	}

	for _, st := range steps {
		stepStart := time.Now()
		err := st.run()
		sr := StepResult{Name: st.name, Status: "success", Duration: time.Since(stepStart)}
		switch {
		case err == errSkipped:
			sr.Status = "skipped"
		case err != nil:
			sr.Status = "failed"
			sr.Error = err
		}
		result.Steps = append(result.Steps, sr)
		if sr.Error != nil {
			return result, err
		}
	}
	return result, nil
}

var errSkipped = errors.New("skipped")

// preflight logs warnings about inputs that will probably make a later step
// fail. It never fails the build itself.
func (b *Builder) preflight(s config.PackageSettings, plan BuildPlan) {
	if _, err := os.Stat(plan.DistFilePath); err != nil {
		b.Log.Warnf("distributable %s not found; it must be produced before packaging", plan.DistFilePath)
	} else if ok, err := IsArchive(plan.DistFilePath); err == nil && !ok {
		b.Log.Warnf("distributable %s does not look like an archive", plan.DistFilePath)
	}

	info, err := ParseDockerfile(filepath.Join(s.BuildDir, "Dockerfile"))
	if err != nil {
		b.Log.Debugf("primary Dockerfile not parsed: %v", err)
		return
	}
	if !info.HasArg("buildVersion") {
		b.Log.Warnf("%s does not declare ARG buildVersion; the build version will be ignored", info.Path)
	}
}

func (b *Builder) build(ctx context.Context, s config.PackageSettings, step BuildStep) error {
	b.Log.Infof("building %s stage image %s", step.Name, step.Tag)
	_, err := b.Runner.Run(ctx, command.Command{
		Executable:     s.DockerExecutable,
		Args:           step.Args(),
		LogName:        step.LogName,
		FailureMessage: step.FailureMessage,
	})
	return err
}

func (b *Builder) stage(plan BuildPlan) error {
	if err := PrepareStaging(plan.StagingDir); err != nil {
		return err
	}
	dst, err := CopyDistFile(plan.DistFilePath, plan.StagingDir, plan.BuildFile.DistFile)
	if err != nil {
		return err
	}
	b.Log.Debugf("staged %s", dst)
	return nil
}

func (b *Builder) render(s config.PackageSettings, plan BuildPlan, result *PackageResult) error {
	content := Render(plan.BuildFile)
	result.Rendered = content

	findings, err := ScanSecrets(content)
	if err != nil {
		b.Log.Warnf("secret scan skipped: %v", err)
	}
	result.Secrets = findings
	for _, f := range findings {
		b.Log.Warnf("rendered Dockerfile %s", f)
	}
	if len(findings) > 0 && s.FailOnSecrets {
		return ErrSecretsFound
	}

	path, err := WriteBuildFile(plan.StagingDir, content)
	if err != nil {
		return errors.Wrap(err, "writing Dockerfile")
	}
	result.BuildFile = path
	b.Log.Debugf("rendered %s Dockerfile to %s", plan.BuildFile.Kind, path)
	return nil
}
