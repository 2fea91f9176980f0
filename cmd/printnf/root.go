package main

import (
	stderrors "errors"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/wasm-printnf/encoder"
	"github.com/wippyai/wasm-printnf/errors"
	"github.com/wippyai/wasm-printnf/host"
	"github.com/wippyai/wasm-printnf/layout"
	"github.com/wippyai/wasm-printnf/memory"
	"github.com/wippyai/wasm-printnf/render"
	"github.com/wippyai/wasm-printnf/runtime"
)

// Config keys. Each is also a persistent flag and a PRINTNF_ env variable.
const (
	keyLogLevel         = "log-level"
	keyStrict           = "strict"
	keyLayouts          = "layouts"
	keyArenaLimit       = "arena-limit"
	keyMemoryLimitPages = "memory-limit-pages"
	keyFPS              = "fps"
)

// app holds what PersistentPreRunE builds for the subcommands.
type app struct {
	v        *viper.Viper
	logger   *zap.Logger
	registry *layout.Registry
}

func rootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	cmd := &cobra.Command{
		Use:   "printnf",
		Short: "Encode, inspect and display printnf messages",
		Long: "printnf encodes typed printf-style arguments into an argument arena, " +
			"renders captured messages, and hosts WebAssembly guests that print through the env module.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default ./printnf.yaml)")
	flags.String(keyLogLevel, "warn", `log level: "debug", "info", "warn" or "error"`)
	flags.Bool(keyStrict, false, "panic on encoding errors instead of reporting them")
	flags.String(keyLayouts, "", "YAML file of additional struct layouts")
	flags.Int(keyArenaLimit, 0, "maximum arena size in bytes, 0 for unbounded")
	flags.Uint32(keyMemoryLimitPages, 0, "maximum guest memory in 64KiB pages, 0 for the engine default")
	flags.Int(keyFPS, 60, "frames per second for run")
	a.bindFlags(flags)

	cmd.AddCommand(newEncodeCmd(a))
	cmd.AddCommand(newRenderCmd(a))
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newLayoutsCmd(a))
	return cmd
}

func (a *app) bindFlags(flags *pflag.FlagSet) {
	a.v.SetEnvPrefix("PRINTNF")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	for _, key := range []string{keyLogLevel, keyStrict, keyLayouts, keyArenaLimit, keyMemoryLimitPages, keyFPS} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := a.readConfig(cmd); err != nil {
		return err
	}
	logger, err := newLogger(a.v.GetString(keyLogLevel))
	if err != nil {
		return err
	}
	a.logger = logger
	encoder.SetLogger(logger)
	render.SetLogger(logger)
	host.SetLogger(logger)
	memory.SetLogger(logger)
	runtime.SetLogger(logger)

	a.registry = layout.DefaultRegistry()
	if path := a.v.GetString(keyLayouts); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "cannot open layouts file")
		}
		defer f.Close()
		structs, err := layout.LoadConfig(f, a.registry)
		if err != nil {
			return err
		}
		logger.Debug("layouts loaded", zap.String("file", path), zap.Int("structs", len(structs)))
	}
	return nil
}

func (a *app) readConfig(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName("printnf")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && stderrors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "cannot read config")
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "bad log level")
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

func (a *app) encoderOptions() []encoder.Option {
	return []encoder.Option{
		encoder.WithStrict(a.v.GetBool(keyStrict)),
		encoder.WithLimit(a.v.GetInt(keyArenaLimit)),
		encoder.WithLogger(a.logger),
	}
}

func (a *app) renderer() *render.Renderer {
	return render.New(render.WithRegistry(a.registry), render.WithLogger(a.logger))
}

// colorizer colors labels only when w is a terminal.
func colorizer(w io.Writer) colorstring.Colorize {
	f, ok := w.(*os.File)
	return colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !ok || !term.IsTerminal(int(f.Fd())),
		Reset:   true,
	}
}
