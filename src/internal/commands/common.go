package commands

import (
	"encoding/json"

	"github.com/maksimkurb/netctl/src/internal/config"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"gopkg.in/yaml.v3"
)

const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool
}

// loadAndValidateConfig loads the configuration and applies its log level
// unless -verbose was given.
func loadAndValidateConfig(ctx *AppContext) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateConfig(); err != nil {
		return nil, errors.NewConfigError("configuration validation failed", err)
	}
	if !ctx.Verbose {
		if err := log.SetLevel(cfg.General.LogLevel); err != nil {
			return nil, errors.NewConfigError("invalid log level", err)
		}
	}
	return cfg, nil
}

// marshalOutput renders v in the given format. YAML goes through JSON first
// so both formats share the JSON field names.
func marshalOutput(v interface{}, format string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.NewParseError("failed to encode output", err)
	}
	switch format {
	case formatJSON:
		return append(data, '\n'), nil
	case formatYAML:
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, errors.NewParseError("failed to encode output", err)
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return nil, errors.NewParseError("failed to encode output", err)
		}
		return out, nil
	default:
		return nil, errors.NewInvalidParameterError("unsupported output format '"+format+"'", nil)
	}
}

func colorForBool(value bool) string {
	if value {
		return colorGreen
	}
	return colorRed
}
