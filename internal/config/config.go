package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Input  InputConfig  `yaml:"input" mapstructure:"input"`
	Pairs  PairsConfig  `yaml:"pairs" mapstructure:"pairs"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the SQLite working store.
type StoreConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	TempDir   string `yaml:"temp_dir" mapstructure:"temp_dir"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// InputConfig locates the statements table and resolver log.
type InputConfig struct {
	StatementsPath string `yaml:"statements_path" mapstructure:"statements_path"`
	ResolverPath   string `yaml:"resolver_path" mapstructure:"resolver_path"`
	Delimiter      string `yaml:"delimiter" mapstructure:"delimiter"`
}

// PairsConfig configures pair construction and scoring.
type PairsConfig struct {
	Seed         int64  `yaml:"seed" mapstructure:"seed"`
	SampleSize   int    `yaml:"sample_size" mapstructure:"sample_size"`
	SamplePrefix string `yaml:"sample_prefix" mapstructure:"sample_prefix"`
	ScoreWorkers int    `yaml:"score_workers" mapstructure:"score_workers"`
}

// OutputConfig configures the pair export.
type OutputConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Format    string `yaml:"format" mapstructure:"format"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NAMEPAIRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "work.db")
	v.SetDefault("store.temp_dir", "/tmp/namepairs")
	v.SetDefault("store.batch_size", 5000)
	v.SetDefault("input.statements_path", "statements.csv")
	v.SetDefault("input.resolver_path", "resolve.ijson")
	v.SetDefault("input.delimiter", ",")
	v.SetDefault("pairs.seed", 42)
	v.SetDefault("pairs.sample_size", 1000)
	v.SetDefault("pairs.sample_prefix", "Q")
	v.SetDefault("pairs.score_workers", 4)
	v.SetDefault("output.path", "pairs.csv")
	v.SetDefault("output.format", "csv")
	v.SetDefault("output.delimiter", ",")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration required by a command mode
// ("run" or "treat").
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "run":
		if c.Store.Path == "" {
			errs = append(errs, "store.path is required")
		}
		if c.Store.BatchSize < 1 {
			errs = append(errs, "store.batch_size must be positive")
		}
		if c.Pairs.SampleSize < 0 {
			errs = append(errs, "pairs.sample_size must not be negative")
		}
		if c.Pairs.ScoreWorkers < 1 {
			errs = append(errs, "pairs.score_workers must be at least 1")
		}
		switch c.Output.Format {
		case "csv", "tsv", "xlsx":
		default:
			errs = append(errs, "output.format must be csv, tsv or xlsx")
		}
	case "treat":
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
