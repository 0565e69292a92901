package build

import "github.com/stagehand-ci/stagehand/src/config"

// BuildPlan is the resolved execution plan for a package build.
type BuildPlan struct {
	Primary   BuildStep
	Secondary BuildStep

	StagingDir   string
	DistFilePath string
	BuildFile    BuildFile
	Gather       bool
}

// BuildStep is a single docker build invocation.
type BuildStep struct {
	Name           string
	Context        string
	Tag            string
	BuildArgs      map[string]string
	LogName        string
	FailureMessage string
}

// Args returns the docker argument vector for the step.
func (s BuildStep) Args() []string {
	args := []string{"build"}
	// Build args are emitted in a fixed order; only buildVersion is used.
	if v, ok := s.BuildArgs["buildVersion"]; ok {
		args = append(args, "--build-arg", "buildVersion="+v)
	}
	args = append(args, "-t", s.Tag, s.Context)
	return args
}

// Plan resolves the two build stages and the staging layout from settings.
// The secondary stage is based on the primary stage's image.
func Plan(s config.PackageSettings) BuildPlan {
	kind := BuildFilePlain
	if s.GatherDepsLocally {
		kind = BuildFileWithLocalDeps
	}
	temp := s.TempImage()

	return BuildPlan{
		Primary: BuildStep{
			Name:           "primary",
			Context:        s.BuildDir,
			Tag:            temp,
			BuildArgs:      map[string]string{"buildVersion": s.BuildVersion},
			LogName:        "docker_package_build",
			FailureMessage: "Error building primary stage docker image",
		},
		Secondary: BuildStep{
			Name:           "secondary",
			Context:        s.StagingDir(),
			Tag:            s.BuildImage,
			LogName:        "docker_package_img",
			FailureMessage: "Error building secondary stage docker image",
		},
		StagingDir:   s.StagingDir(),
		DistFilePath: s.DistFilePath(),
		BuildFile: BuildFile{
			Kind:          kind,
			BuildImage:    temp,
			Maintainer:    s.Maintainer,
			DistFile:      s.DistFile,
			PrepareEnvCmd: s.PrepareEnvCmd,
			PackageCmd:    s.PackageCmd,
		},
		Gather: s.GatherDepsLocally,
	}
}
