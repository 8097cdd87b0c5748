package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ORGANIZER_SERVER_PORT.
const EnvPrefix = "ORGANIZER"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Log    LogConfig    `mapstructure:"log"`
	Scan   ScanConfig   `mapstructure:"scan"`
	LLM    LLMConfig    `mapstructure:"llm"`
}

var AppConfig *Config

// Load reads configuration from .env, an optional config file and the
// environment. path may be a file or a directory; empty means the working
// directory. A missing config file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setAllDefaults(v)

	if info, err := os.Stat(path); path != "" && err == nil && !info.IsDir() {
		v.SetConfigFile(path)
	} else {
		dir := path
		if dir == "" {
			dir = "."
		}
		v.SetConfigName("config")
		v.AddConfigPath(dir)
		v.AddConfigPath(filepath.Join(dir, "configs"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setAllDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setAllDefaults(v *viper.Viper) {
	var (
		server ServerConfig
		data   DataConfig
		log    LogConfig
		scan   ScanConfig
		llm    LLMConfig
	)
	server.setDefaults(v)
	data.setDefaults(v)
	log.setDefaults(v)
	scan.setDefaults(v)
	llm.setDefaults(v)
}

func (c *Config) validate() error {
	if c.Scan.MaxDepth < 0 {
		return fmt.Errorf("invalid scan.max_depth: %d", c.Scan.MaxDepth)
	}
	if c.Scan.MaxFiles <= 0 {
		return fmt.Errorf("invalid scan.max_files: %d", c.Scan.MaxFiles)
	}
	if c.Data.Dir == "" {
		return errors.New("data.dir is required")
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "organizer")
	}
	return ".organizer"
}
