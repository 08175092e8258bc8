package main

import (
	"io"
	"os"
	"strings"

	"lensdb/internal/config"
	apperrors "lensdb/internal/errors"
	"lensdb/internal/errors/logging"
	"lensdb/internal/logger"
	"lensdb/internal/provisioner"

	"github.com/spf13/cobra"
)

// projectRootEnv names the variable a build orchestrator can use instead of --project-root.
const projectRootEnv = "PROJECT_DIR"

type options struct {
	projectRoot string
	configPath  string
	logLevel    string
	logFormat   string
	noColor     bool
}

func newRootCommand(logOut io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Fetch the lens profile database if it is missing",
		Long: `provision makes sure resources/camera_presets/profiles.cbor.gz exists two
levels above the project root, downloading it from the latest lens_profiles
release when absent.

Outbound traffic honours https_proxy, http_proxy and all_proxy (lower-case
variants first). A failed download does not fail the build; only an unwritable
destination does.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, logOut)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.projectRoot, "project-root", "", "project root the asset path is resolved against (default $"+projectRootEnv+" or the working directory)")
	flags.StringVar(&opts.configPath, "config", "", "optional YAML file with log settings")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	return cmd
}

func run(cmd *cobra.Command, opts *options, logOut io.Writer) error {
	bootstrap := logger.NewStandardLogger(logger.WithOutput(logOut))

	cfg, err := loadConfig(opts)
	if err != nil {
		bootstrap.Error("Invalid configuration: %v", err)
		return err
	}
	log := cfg.NewLogger(logOut)

	root, err := resolveProjectRoot(opts.projectRoot)
	if err != nil {
		log.Error("Cannot determine project root: %v", err)
		return err
	}

	asset, err := provisioner.LensProfiles()
	if err != nil {
		log.Error("%v", err)
		return err
	}

	var progress provisioner.ProgressReporter = provisioner.NoopProgressReporter{}
	if log.GetLevel() == logger.LevelDebug {
		progress = provisioner.NewLogProgressReporter(log, 0)
	}

	p, err := provisioner.New(asset, log, provisioner.WithProgressReporter(progress))
	if err != nil {
		log.Error("Failed to initialise provisioner: %v", err)
		return err
	}

	result, err := p.Ensure(cmd.Context(), root)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok {
			logging.Error(cmd.Context(), log, "Cannot provision "+asset.Label(), appErr)
		} else {
			log.Error("Cannot provision %s: %v", asset.Label(), err)
		}
		return err
	}

	log.Debug("%s: %s (%s)", asset.Label(), result.Outcome, result.Path)
	return nil
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg = config.Merge(cfg, &config.Config{
		LogLevel:  opts.logLevel,
		LogFormat: opts.logFormat,
		NoColor:   opts.noColor,
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveProjectRoot(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv(projectRootEnv)); v != "" {
		return v, nil
	}
	return os.Getwd()
}
