// Package cli builds the classifyd command tree: serve, predict and version.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"classifyd/internal/config"
	"classifyd/internal/service"
)

// Version is stamped at build time with -ldflags "-X classifyd/internal/cli.Version=...".
var Version = "dev"

// Deps are the process collaborators a command tree runs against.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	// Opener loads classifiers; nil selects the onnx/tflite runtimes.
	Opener service.Opener
}

func (d Deps) withDefaults() Deps {
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	return d
}

// rootState is shared by all subcommands after PersistentPreRunE.
type rootState struct {
	deps       Deps
	configPath string
	logLevel   string
	logFormat  string

	cfg config.Config
	log zerolog.Logger
}

// NewRootCmd constructs the command tree.
func NewRootCmd(deps Deps) *cobra.Command {
	st := &rootState{deps: deps.withDefaults()}
	root := &cobra.Command{
		Use:           "classifyd",
		Short:         "Image classification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(st.deps.Stdout)
	root.SetErr(st.deps.Stderr)

	// Persistent flags -> rootState
	pf := root.PersistentFlags()
	pf.StringVar(&st.configPath, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.StringVar(&st.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults CLASSIFYD_LOG_LEVEL or info)")
	pf.StringVar(&st.logFormat, "log-format", "", "Log format: json|console (defaults CLASSIFYD_LOG_FORMAT or json)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return st.load(cmd)
	}

	root.AddCommand(newServeCmd(st), newPredictCmd(st), newVersionCmd())
	return root
}

// load merges configuration as defaults < file < environment < flags and
// builds the process logger.
func (st *rootState) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if st.configPath != "" {
		fileCfg, err := config.Load(st.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Merge(cfg, fileCfg)
	}
	envCfg, err := config.FromEnv(st.deps.Getenv)
	if err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	cfg = config.Merge(cfg, envCfg)
	cfg = config.Merge(cfg, flagOverrides(cmd))
	cfg = config.Merge(cfg, config.Config{LogLevel: st.logLevel, LogFormat: st.logFormat})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	st.cfg = cfg
	st.log = newLogger(st.deps.Stderr, cfg.LogLevel, cfg.LogFormat)
	return nil
}

// newLogger returns a zerolog logger writing JSON lines, or human-readable
// lines when format is "console".
func newLogger(w io.Writer, level, format string) zerolog.Logger {
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
