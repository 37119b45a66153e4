package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: server.address is read from
// LINKGRAPH_SERVER_ADDRESS
const EnvPrefix = "LINKGRAPH"

// Config manages service configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Layout parameters
	v.SetDefault("layout.algorithm", "spring")
	v.SetDefault("layout.spacing", 1.0)
	v.SetDefault("layout.spring_iterations", 50)
	v.SetDefault("layout.kamada_kawai_iterations", 500)
	v.SetDefault("layout.seed", 42)
	v.SetDefault("layout.timeout_ms", 0)

	// Metrics parameters
	v.SetDefault("metrics.top_k", 5)
	v.SetDefault("metrics.community", "greedy")
	v.SetDefault("metrics.community_seed", 42)

	// Normalization parameters
	v.SetDefault("normalize.fold_case", false)

	// Server parameters
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for layout parameters
func (c *Config) LayoutAlgorithm() string { return c.v.GetString("layout.algorithm") }
func (c *Config) LayoutSpacing() float64 { return c.v.GetFloat64("layout.spacing") }
func (c *Config) SpringIterations() int { return c.v.GetInt("layout.spring_iterations") }
func (c *Config) KamadaKawaiIterations() int { return c.v.GetInt("layout.kamada_kawai_iterations") }
func (c *Config) LayoutSeed() int64 { return c.v.GetInt64("layout.seed") }
func (c *Config) LayoutTimeout() time.Duration { return time.Duration(c.v.GetInt64("layout.timeout_ms")) * time.Millisecond }

func (c *Config) TopK() int { return c.v.GetInt("metrics.top_k") }
func (c *Config) CommunityMethod() string { return c.v.GetString("metrics.community") }
func (c *Config) CommunitySeed() int64 { return c.v.GetInt64("metrics.community_seed") }
func (c *Config) FoldCase() bool { return c.v.GetBool("normalize.fold_case") }

func (c *Config) ServerAddress() string { return c.v.GetString("server.address") }
func (c *Config) ReadTimeout() time.Duration { return c.v.GetDuration("server.read_timeout") }
func (c *Config) WriteTimeout() time.Duration { return c.v.GetDuration("server.write_timeout") }
func (c *Config) RequestTimeout() time.Duration { return c.v.GetDuration("server.request_timeout") }
func (c *Config) MaxBodyBytes() int64 { return c.v.GetInt64("server.max_body_bytes") }
func (c *Config) AllowedOrigins() []string { return c.v.GetStringSlice("server.allowed_origins") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }
func (c *Config) LogFormat() string { return c.v.GetString("logging.format") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config. Logs go to stderr so
// that stdout stays free for command output.
func (c *Config) CreateLogger(service string) zerolog.Logger {
	return c.CreateLoggerTo(os.Stderr, service)
}

// CreateLoggerTo is CreateLogger writing to out
func (c *Config) CreateLoggerTo(out io.Writer, service string) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(c.LogFormat(), "console") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", service).Logger()
}
