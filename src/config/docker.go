package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mattn/go-shellwords"
)

// Property keys understood by the docker commands.
const (
	KeyBuildDir            = "docker_package_build_dir"
	KeyBuildImage          = "docker_package_build_img"
	KeyBuildVersion        = "docker_package_build_version"
	KeyDistFile            = "docker_package_dist_file"
	KeyMaintainer          = "docker_package_image_maintainer"
	KeyPrepareEnvCmd       = "docker_package_prepare_env_cmd"
	KeyPackageCmd          = "docker_package_package_cmd"
	KeyFailOnSecrets       = "docker_package_fail_on_secrets"
	KeyGatherDepsLocally   = "gather_dep_locally"
	KeyRequirementsFile    = "gather_authorized_dependencies_requirements_file"
	KeyPushRegistry        = "docker_push_registry"
	KeyPushImage           = "docker_push_img"
	KeyTagAsLatest         = "docker_push_tag_as_latest"
	KeyEnsureECRRepository = "ensure_ecr_registry_created"
	KeyECRRegion           = "docker_push_ecr_region"
	KeyPushCredentials     = "docker_push_credentials"
	KeyDockerExecutable    = "docker_executable"
	KeyAWSExecutable       = "aws_executable"
	KeyPipExecutable       = "pip_executable"
	KeyRunOnVerify         = "run_docker_on_verify"
	KeyLocalPort           = "run_docker_local_port"
	KeyContainerPort       = "run_docker_container_port"
	KeyPropagateAWS        = "propagate_aws_credentials"
	KeyEnvironment         = "environment"
	KeyRunEnvFile          = "run_docker_env_file"
	KeyRunArgs             = "run_docker_args"
	KeyReadyTimeout        = "run_docker_ready_timeout"
	KeyBuildNumber         = "build_number"
)

// KnownKeys lists every property key stagehand reads.
var KnownKeys = []string{
	KeyBuildDir, KeyBuildImage, KeyBuildVersion, KeyDistFile, KeyMaintainer,
	KeyPrepareEnvCmd, KeyPackageCmd, KeyFailOnSecrets, KeyGatherDepsLocally,
	KeyRequirementsFile, KeyPushRegistry, KeyPushImage, KeyTagAsLatest,
	KeyEnsureECRRepository, KeyECRRegion, KeyPushCredentials, KeyDockerExecutable,
	KeyAWSExecutable, KeyPipExecutable, KeyRunOnVerify, KeyLocalPort,
	KeyContainerPort, KeyPropagateAWS, KeyEnvironment, KeyRunEnvFile, KeyRunArgs,
	KeyReadyTimeout, KeyBuildNumber,
}

// Defaults for the docker commands.
const (
	DefaultBuildDir      = "src/main/docker"
	DefaultMaintainer    = "anonymous"
	DefaultPrepareEnvCmd = "echo 'empty prepare_env_cmd installing into python'"
	DefaultPort          = 5000
	DefaultReadyTimeout  = 30 * time.Second
)

// ManifestFile is the artifact manifest written under the target dir.
const ManifestFile = "artifact.json"

// PackageSettings configures the two-stage image build.
type PackageSettings struct {
	Project ProjectSettings

	DockerExecutable string
	PipExecutable    string

	BuildDir     string // directory holding the user's primary Dockerfile
	BuildImage   string // final local image reference
	BuildVersion string // passed to stage 1 as --build-arg buildVersion
	DistFile     string // file name of the distributable

	Maintainer    string
	PrepareEnvCmd string
	PackageCmd    string

	GatherDepsLocally bool
	RequirementsFile  string
	FailOnSecrets     bool
}

// StagingDir is where the secondary build context is assembled.
func (s PackageSettings) StagingDir() string {
	return filepath.Join(s.Project.DistDir, "docker")
}

// DistFilePath is the location of the distributable produced upstream.
func (s PackageSettings) DistFilePath() string {
	return filepath.Join(s.Project.DistDir, "dist", s.DistFile)
}

// TempImage is the tag given to the stage-1 image.
func (s PackageSettings) TempImage() string {
	return fmt.Sprintf("pyb-temp-%s:%s", s.Project.Name, s.Project.Version)
}

// DefaultPackageCmd returns the install command used when none is configured.
func DefaultPackageCmd(distFile string, localDeps bool) string {
	if localDeps {
		return fmt.Sprintf("pip install /python-install/%s --no-build-isolation --find-links file:///python-install/dep", distFile)
	}
	return "pip install " + distFile
}

// LocalImage returns the local image reference produced by the package step.
func LocalImage(project ProjectSettings, props Properties) string {
	return props.String(KeyBuildImage, fmt.Sprintf("%s:%s", project.Name, project.Version))
}

// ResolvePackage resolves package settings from properties.
func ResolvePackage(project ProjectSettings, props Properties) (PackageSettings, error) {
	gather, err := props.Bool(KeyGatherDepsLocally, false)
	if err != nil {
		return PackageSettings{}, err
	}
	failOnSecrets, err := props.Bool(KeyFailOnSecrets, false)
	if err != nil {
		return PackageSettings{}, err
	}

	distFile := props.String(KeyDistFile, fmt.Sprintf("%s-%s.tar.gz", project.Name, project.Version))
	buildDir := props.String(KeyBuildDir, DefaultBuildDir)
	if !filepath.IsAbs(buildDir) {
		buildDir = filepath.Join(project.RootDir, buildDir)
	}

	return PackageSettings{
		Project:           project,
		DockerExecutable:  props.String(KeyDockerExecutable, "docker"),
		PipExecutable:     props.String(KeyPipExecutable, "pip"),
		BuildDir:          buildDir,
		BuildImage:        LocalImage(project, props),
		BuildVersion:      props.String(KeyBuildVersion, project.Version),
		DistFile:          distFile,
		Maintainer:        props.String(KeyMaintainer, DefaultMaintainer),
		PrepareEnvCmd:     props.String(KeyPrepareEnvCmd, DefaultPrepareEnvCmd),
		PackageCmd:        props.String(KeyPackageCmd, DefaultPackageCmd(distFile, gather)),
		GatherDepsLocally: gather,
		RequirementsFile:  props.String(KeyRequirementsFile, ""),
		FailOnSecrets:     failOnSecrets,
	}, nil
}

// PublishSettings configures tagging, pushing and the artifact manifest.
type PublishSettings struct {
	Project ProjectSettings

	DockerExecutable string
	AWSExecutable    string

	Registry            string
	Artifact            string
	TagAsLatest         bool
	EnsureECRRepository bool
	ECRRegion           string

	// Credentials is an env var prefix: P → P_USER / P_PASS.
	Credentials string

	ManifestPath string
}

// RegistryPath is <registry>/<artifact>.
func (s PublishSettings) RegistryPath() string {
	return s.Registry + "/" + s.Artifact
}

// ResolvePublish resolves publish settings. docker_push_registry is
// mandatory; the error is returned before any process is started.
func ResolvePublish(project ProjectSettings, props Properties) (PublishSettings, error) {
	registry, err := props.Mandatory(KeyPushRegistry)
	if err != nil {
		return PublishSettings{}, err
	}
	latest, err := props.Bool(KeyTagAsLatest, true)
	if err != nil {
		return PublishSettings{}, err
	}
	ensure, err := props.Bool(KeyEnsureECRRepository, true)
	if err != nil {
		return PublishSettings{}, err
	}

	return PublishSettings{
		Project:             project,
		DockerExecutable:    props.String(KeyDockerExecutable, "docker"),
		AWSExecutable:       props.String(KeyAWSExecutable, "aws"),
		Registry:            registry,
		Artifact:            props.String(KeyPushImage, project.Name),
		TagAsLatest:         latest,
		EnsureECRRepository: ensure,
		ECRRegion:           props.String(KeyECRRegion, ""),
		Credentials:         props.String(KeyPushCredentials, ""),
		ManifestPath:        filepath.Join(project.TargetDir, ManifestFile),
	}, nil
}

// RunSettings configures the local run/verify/kill cycle.
type RunSettings struct {
	Project ProjectSettings

	DockerExecutable string

	Image         string
	ContainerName string
	Environment   string

	LocalPort     int
	ContainerPort int

	PropagateAWSCredentials bool
	EnvFile                 string
	ExtraArgs               []string
	ReadyTimeout            time.Duration
	OnVerify                bool
}

// ResolveRun resolves run settings.
func ResolveRun(project ProjectSettings, props Properties) (RunSettings, error) {
	onVerify, err := props.Bool(KeyRunOnVerify, false)
	if err != nil {
		return RunSettings{}, err
	}
	localPort, err := props.Int(KeyLocalPort, DefaultPort)
	if err != nil {
		return RunSettings{}, err
	}
	containerPort, err := props.Int(KeyContainerPort, DefaultPort)
	if err != nil {
		return RunSettings{}, err
	}
	propagate, err := props.Bool(KeyPropagateAWS, true)
	if err != nil {
		return RunSettings{}, err
	}
	timeout, err := props.Duration(KeyReadyTimeout, DefaultReadyTimeout)
	if err != nil {
		return RunSettings{}, err
	}

	var extra []string
	if raw, ok := props.Lookup(KeyRunArgs); ok {
		extra, err = shellwords.Parse(raw)
		if err != nil {
			return RunSettings{}, &InvalidPropertyError{Key: KeyRunArgs, Value: raw, Want: "argument list"}
		}
	}

	envFile := props.String(KeyRunEnvFile, "")
	if envFile != "" && !filepath.IsAbs(envFile) {
		envFile = filepath.Join(project.RootDir, envFile)
	}

	return RunSettings{
		Project:                 project,
		DockerExecutable:        props.String(KeyDockerExecutable, "docker"),
		Image:                   LocalImage(project, props),
		ContainerName:           project.Name,
		Environment:             props.String(KeyEnvironment, ""),
		LocalPort:               localPort,
		ContainerPort:           containerPort,
		PropagateAWSCredentials: propagate,
		EnvFile:                 envFile,
		ExtraArgs:               extra,
		ReadyTimeout:            timeout,
		OnVerify:                onVerify,
	}, nil
}
