package build

import "time"

// PackageResult captures the outcome of a package build.
type PackageResult struct {
	// LocalRef is the reference the secondary stage was tagged with, exactly
	// as passed to the engine. The publisher tags from this string.
	LocalRef  string
	Image     ImageRef
	TempImage string
	BuildFile string // path of the rendered Dockerfile
	Rendered  string
	Secrets   []SecretFinding
	Steps     []StepResult
	Duration  time.Duration
}

// StepResult captures the outcome of a single pipeline step.
type StepResult struct {
	Name     string
	Status   string // "success", "failed", "skipped"
	Duration time.Duration
	Error    error
}
