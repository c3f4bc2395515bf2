package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration_options.go . Configuration

const (
	ServerModeDev  = "dev"
	ServerModeProd = "prod"
)

type Configuration struct {
	Server     Server
	Auth       Authentication
	Transpiler Transpiler
	History    History
	LogFormat  string   `default:"console" validate:"oneof=console json" flag:"log-format"`
	LogLevel   string   `default:"debug" validate:"oneof=debug info warn error" flag:"log-level"`
	ConfigFile string   `flag:"config"`
	Macros     []string `flag:"macro"`
}

type Server struct {
	HTTPPort        int           `default:"8000" validate:"min=1,max=65535" flag:"server-http-port"`
	ServerMode      string        `default:"dev" validate:"oneof=dev prod" flag:"server-mode"`
	ShutdownTimeout time.Duration `default:"10s" flag:"server-shutdown-timeout"`
}

type Authentication struct {
	Enabled     bool   `flag:"authentication-enabled"`
	JWTFilePath string `flag:"authentication-jwt-filepath"`
}

type Transpiler struct {
	Database     string `default:"cloki" validate:"required,sqlident" flag:"database"`
	DefaultLimit uint64 `default:"1000" validate:"min=1" flag:"default-limit"`
	NumWorkers   int    `default:"3" validate:"min=1" flag:"num-workers"`
	MaxBatchSize int    `default:"100" validate:"min=1" flag:"max-batch-size"`
}

// History configures the compiled query log.
type History struct {
	Enabled bool   `default:"true" flag:"history-enabled"`
	DBPath  string `default:":memory:" validate:"required" flag:"history-db-path"`
	// MaxEntries bounds the log. Older entries are pruned after each insert.
	MaxEntries uint64 `default:"10000" validate:"min=1" flag:"history-max-entries"`
}

// MacroDefinition is a user macro given as name=template.
type MacroDefinition struct {
	Name     string `mapstructure:"name"`
	Template string `mapstructure:"template"`
}

// MacroDefinitions parses the name=template pairs from Macros.
func (c *Configuration) MacroDefinitions() ([]MacroDefinition, error) {
	defs := make([]MacroDefinition, 0, len(c.Macros))
	for _, m := range c.Macros {
		name, body, ok := strings.Cut(m, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || body == "" {
			return nil, fmt.Errorf("invalid macro %q: expected name=template", m)
		}
		defs = append(defs, MacroDefinition{Name: name, Template: body})
	}
	return defs, nil
}

var sqlIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the struct constraints and reports the first violation by
// its flag name.
func (c *Configuration) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return name
		}
		return f.Name
	})
	if err := v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdentRe.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid %s: %v", verrs[0].Field(), verrs[0].Value())
		}
		return err
	}

	if c.Auth.Enabled && c.Auth.JWTFilePath == "" {
		return errors.New("authentication-jwt-filepath must be set when authentication is enabled")
	}

	_, err := c.MacroDefinitions()
	return err
}
