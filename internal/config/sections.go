package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DefaultProjectMarkers are the file and directory names that identify a
// software project at the top level of a folder.
var DefaultProjectMarkers = []string{
	"package.json", "Cargo.toml", "pyproject.toml", "setup.py", "requirements.txt",
	"go.mod", "Makefile", "CMakeLists.txt", "pom.xml", "build.gradle",
	".git", ".gitignore", "README.md", "README", "LICENSE", "Dockerfile",
	".vscode", ".idea", "tsconfig.json", "vite.config.js", "webpack.config.js",
}

type ServerConfig struct {
	Port            string `mapstructure:"port"`
	APIKey          string `mapstructure:"api_key"`
	BodyLimit       int    `mapstructure:"body_limit"`
	RateLimitReqs   int    `mapstructure:"rate_limit_requests"`
	RateLimitWindow int    `mapstructure:"rate_limit_window"`
	AnalyzeLimit    int    `mapstructure:"analyze_limit"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	IdleTimeout     int    `mapstructure:"idle_timeout"`
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.api_key", "organizer-secret-key")
	v.SetDefault("server.body_limit", 8*1024*1024)
	v.SetDefault("server.rate_limit_requests", 100)
	v.SetDefault("server.rate_limit_window", 60)
	v.SetDefault("server.analyze_limit", 10) // per minute
	v.SetDefault("server.read_timeout", 120)
	v.SetDefault("server.write_timeout", 600)
	v.SetDefault("server.idle_timeout", 300)
}

type DataConfig struct {
	Dir    string `mapstructure:"dir"`
	DBFile string `mapstructure:"db_file"`
}

func (d *DataConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", defaultDataDir())
	v.SetDefault("data.db_file", "organizer.db")
}

// DBPath returns the sqlite database location.
func (d DataConfig) DBPath() string {
	if filepath.IsAbs(d.DBFile) {
		return d.DBFile
	}
	return filepath.Join(d.Dir, d.DBFile)
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.enable_file", false)
	v.SetDefault("log.file_path", "logs/organizer.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}

type ScanConfig struct {
	MaxDepth int      `mapstructure:"max_depth"`
	MaxFiles int      `mapstructure:"max_files"`
	Markers  []string `mapstructure:"markers"`
}

func (s *ScanConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scan.max_depth", 3)
	v.SetDefault("scan.max_files", 500)
	v.SetDefault("scan.markers", DefaultProjectMarkers)
}

type LLMConfig struct {
	Timeout           int     `mapstructure:"timeout"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	BreakerFailures   uint32  `mapstructure:"breaker_failures"`
	BreakerTimeout    int     `mapstructure:"breaker_timeout"`
}

func (l *LLMConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("llm.timeout", 120)
	v.SetDefault("llm.requests_per_minute", 20)
	v.SetDefault("llm.breaker_failures", 3)
	v.SetDefault("llm.breaker_timeout", 30)
}

// TimeoutDuration returns the upstream request timeout.
func (l LLMConfig) TimeoutDuration() time.Duration {
	return time.Duration(l.Timeout) * time.Second
}
