package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/alias"
)

// configName is the config file name without extension.
const configName = ".aliasrewrite"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for aliasrewrite settings.
const envPrefix = "ALIASREWRITE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

//go:embed schema.json
var schemaJSON []byte

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	if used := viperCfg.ConfigFileUsed(); used != "" && readErr == nil {
		raw, err := os.ReadFile(used)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		aliases, err := ParseDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", used, err)
		}

		cfg.Aliases = aliases
		cfg.File = used
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// ParseDocument validates a raw config document against the embedded schema
// and returns its aliases in document order.
func ParseDocument(raw []byte) ([]alias.Entry, error) {
	var doc any

	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if doc == nil {
		return nil, nil
	}

	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var ordered struct {
		Aliases yaml.Node `yaml:"aliases"`
	}

	if err := yaml.Unmarshal(raw, &ordered); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return DecodeAliases(&ordered.Aliases)
}

func validateSchema(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		msgs = append(msgs, resultErr.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// DecodeAliases reads an aliases node in either of its two forms: a mapping
// of pattern to replacement, or a list of {pattern, replacement} objects.
// Order is preserved in both.
func DecodeAliases(node *yaml.Node) ([]alias.Entry, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.MappingNode:
		entries := make([]alias.Entry, 0, len(node.Content)/2) //nolint:mnd // key/value pairs

		for i := 0; i+1 < len(node.Content); i += 2 {
			var entry alias.Entry

			if err := node.Content[i].Decode(&entry.Pattern); err != nil {
				return nil, fmt.Errorf("%w: alias key at line %d: %w", ErrInvalidConfig, node.Content[i].Line, err)
			}

			if err := node.Content[i+1].Decode(&entry.Replacement); err != nil {
				return nil, fmt.Errorf("%w: alias %q at line %d: %w", ErrInvalidConfig, entry.Pattern, node.Content[i+1].Line, err)
			}

			entries = append(entries, entry)
		}

		return entries, nil
	case yaml.SequenceNode:
		var entries []alias.Entry

		if err := node.Decode(&entries); err != nil {
			return nil, fmt.Errorf("%w: aliases: %w", ErrInvalidConfig, err)
		}

		return entries, nil
	default:
		return nil, fmt.Errorf("%w: aliases must be a mapping or a list (line %d)", ErrInvalidConfig, node.Line)
	}
}
