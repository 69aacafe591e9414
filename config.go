// Configuration for rxcore
// 配置结构，支持从环境变量加载以及调度器的函数式选项
package rxcore

import (
	"fmt"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// ============================================================================
// 配置结构
// ============================================================================

// Config 默认调度器与日志配置
type Config struct {
	// ParallelSize 默认parallel调度器的worker数量，0表示runtime.NumCPU()
	ParallelSize int `env:"RXCORE_PARALLEL_SIZE" envDefault:"0"`
	// ElasticTTL 默认elastic调度器空闲worker的存活时间
	ElasticTTL time.Duration `env:"RXCORE_ELASTIC_TTL" envDefault:"60s"`
	// LogLevel 包级别日志级别
	LogLevel string `env:"RXCORE_LOG_LEVEL" envDefault:"info"`
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		ParallelSize: runtime.NumCPU(),
		ElasticTTL:   DefaultElasticTTL,
		LogLevel:     "info",
	}
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("rxcore: parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults 填充零值字段
func (c *Config) ApplyDefaults() {
	if c.ParallelSize <= 0 {
		c.ParallelSize = runtime.NumCPU()
	}
	if c.ElasticTTL == 0 {
		c.ElasticTTL = DefaultElasticTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.ElasticTTL < 0 {
		return fmt.Errorf("rxcore: elastic ttl must not be negative (got: %s)", c.ElasticTTL)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("rxcore: invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// ============================================================================
// 调度器选项
// ============================================================================

// Option 调度器配置选项
type Option func(o *schedulerOptions)

type schedulerOptions struct {
	ttl    time.Duration
	clock  clock.Clock
	logger *zerolog.Logger
}

func newSchedulerOptions(opts []Option) *schedulerOptions {
	o := &schedulerOptions{
		ttl:   DefaultElasticTTL,
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *schedulerOptions) log() *zerolog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return currentLogger()
}

// WithTTL 设置elastic调度器空闲worker的存活时间
func WithTTL(ttl time.Duration) Option {
	return func(o *schedulerOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock 设置调度器使用的时钟，测试中可以传入clock.NewMock()
func WithClock(c clock.Clock) Option {
	return func(o *schedulerOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger 设置调度器使用的日志记录器
func WithLogger(logger zerolog.Logger) Option {
	return func(o *schedulerOptions) {
		o.logger = &logger
	}
}
