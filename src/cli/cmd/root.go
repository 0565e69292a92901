package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stagehand-ci/stagehand/src/command"
	"github.com/stagehand-ci/stagehand/src/config"
	"github.com/stagehand-ci/stagehand/src/gitver"
	"github.com/stagehand-ci/stagehand/src/output"
)

var (
	cfgFile   string
	verbose   bool
	propFlags []string
	cfg       *config.Config
	props     config.Properties
)

var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Package Python distributables into container images",
	Long: `stagehand builds a container image around a packaged Python distributable
in two stages, publishes it to a registry and records the result in
target/artifact.json.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configureLogging()
		// Skip config loading for commands that don't need it.
		if cmd.Name() == "version" {
			return nil
		}
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		overrides, err := config.ParseAssignments(propFlags)
		if err != nil {
			return err
		}
		props = cfg.Props().Merge(overrides)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .stagehand.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringArrayVarP(&propFlags, "property", "P", nil, "set a property (key=value, repeatable)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func configureLogging() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !output.IsCI(),
		FullTimestamp:    true,
		ForceColors:      output.UseColor(),
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// session is the per-invocation state shared by the docker commands.
type session struct {
	project config.ProjectSettings
	runner  command.Runner
	log     logrus.FieldLogger
}

// newSession resolves the project in the working directory and validates
// the configuration before any external process runs.
func newSession() (*session, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	project, err := config.ResolveProject(cfg, props, rootDir, config.Detectors{
		Name:    gitver.ProjectName,
		Version: gitver.ProjectVersion,
	})
	if err != nil {
		return nil, err
	}

	warnings, err := config.Validate(project, props)
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.WithFields(logrus.Fields{
		"project": project.Name,
		"version": project.Version,
	})
	return &session{
		project: project,
		runner:  command.NewRunner(project.DockerLogDir(), log),
		log:     log,
	}, nil
}
