package cmd

import (
	"github.com/spf13/pflag"

	"github.com/kubev2v/logql-transpiler/internal/config"
	"github.com/kubev2v/logql-transpiler/pkg/macros"
	"github.com/kubev2v/logql-transpiler/pkg/transpiler"
)

func registerTranspilerFlags(fs *pflag.FlagSet, cfg *config.Configuration) {
	fs.StringVar(&cfg.Transpiler.Database, "database", cfg.Transpiler.Database, "ClickHouse database holding the samples and time_series tables")
	fs.Uint64Var(&cfg.Transpiler.DefaultLimit, "default-limit", cfg.Transpiler.DefaultLimit, "Row limit when the request sets none")
	fs.StringArrayVar(&cfg.Macros, "macro", cfg.Macros, "User macro as name=template, repeatable")
}

func newTranspiler(cfg *config.Configuration) (*transpiler.Transpiler, error) {
	defs, err := cfg.MacroDefinitions()
	if err != nil {
		return nil, err
	}

	registry, err := macros.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, d := range defs {
		m, err := macros.NewTemplateMacro(d.Name, d.Template)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(m); err != nil {
			return nil, err
		}
	}

	return transpiler.New(
		transpiler.WithDatabase(cfg.Transpiler.Database),
		transpiler.WithDefaultLimit(cfg.Transpiler.DefaultLimit),
		transpiler.WithMacros(registry),
	), nil
}

// validateConfiguration checks cfg and compiles the user macros.
func validateConfiguration(cfg *config.Configuration) error {
	_, err := validatedTranspiler(cfg)
	return err
}

func validatedTranspiler(cfg *config.Configuration) (*transpiler.Transpiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newTranspiler(cfg)
}
