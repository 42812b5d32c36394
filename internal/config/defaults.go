package config

import (
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/parse"
)

// Default values applied when neither file nor environment sets a key.
const (
	DefaultSkipVendor  = true
	DefaultWorkers     = 0
	DefaultMaxFileSize = "1MiB"
	DefaultLogLevel    = "info"
)

// DefaultExclude holds base-name globs skipped by default.
var DefaultExclude = []string{"*.min.js"}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("include", parse.Extensions())
	viperCfg.SetDefault("exclude", DefaultExclude)
	viperCfg.SetDefault("skip_vendor", DefaultSkipVendor)
	viperCfg.SetDefault("workers", DefaultWorkers)
	viperCfg.SetDefault("max_file_size", DefaultMaxFileSize)
	viperCfg.SetDefault("out_dir", "")

	viperCfg.SetDefault("log.level", DefaultLogLevel)
	viperCfg.SetDefault("log.json", false)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.otlp_headers", "")
}
