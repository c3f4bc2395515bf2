package cmd

import (
	"fmt"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kubev2v/logql-transpiler/internal/config"
)

const envPrefix = "LOGQL"

func NewRootCommand(cfg *config.Configuration) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "logql-transpiler",
		Short:         "Compile LogQL queries into ClickHouse SQL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfiguration(cmd, cfg); err != nil {
				return err
			}
			return setupLogger(cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Path to a YAML or JSON configuration file")

	rootCmd.AddCommand(
		NewRunCommand(cfg),
		NewCompileCommand(cfg),
		NewTailCommand(cfg),
	)

	return rootCmd
}

// loadConfiguration applies the config file and LOGQL_* environment
// variables to every flag of cmd that was not set on the command line.
func loadConfiguration(cmd *cobra.Command, cfg *config.Configuration) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfg.ConfigFile != "" {
		viper.SetConfigFile(cfg.ConfigFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	cobraflags.PresetRequiredFlags(envPrefix, make(map[*pflag.Flag]bool), cmd)

	if viper.IsSet("macros") {
		var defs []config.MacroDefinition
		if err := viper.UnmarshalKey("macros", &defs); err != nil {
			return fmt.Errorf("reading macros: %w", err)
		}
		for _, d := range defs {
			cfg.Macros = append(cfg.Macros, d.Name+"="+d.Template)
		}
	}

	return nil
}

func setupLogger(cfg *config.Configuration) error {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log-level: %w", err)
	}

	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = zap.NewAtomicLevelAt(level)
	loggerCfg.Encoding = cfg.LogFormat
	loggerCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.LogFormat == "console" {
		loggerCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := loggerCfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}
