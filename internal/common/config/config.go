package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config 应用配置（JSON 文件或 Consul KV，见 consul_kv.go）。
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Consul    ConsulConfig    `json:"consul"`
	Jaeger    JaegerConfig    `json:"jaeger"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Log       LogConfig       `json:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`     // 服务名称
	Host     string `json:"host"`     // 服务地址
	Port     int    `json:"port"`     // HTTP 端口
	Timezone string `json:"timezone"` // IANA zone usada para formatar horários ao usuário
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	MaxIdle  int    `json:"max_idle"`
	MaxOpen  int    `json:"max_open"`
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// AuthConfig JWT 鉴权配置
type AuthConfig struct {
	Enabled      bool   `json:"enabled"`
	JWTSecret    string `json:"jwt_secret"`
	Issuer       string `json:"issuer"`
	Audience     string `json:"audience"`
	TokenTTLMins int    `json:"token_ttl_mins"` // access token 有效期（分钟）
}

// RateLimitConfig 限流配置（作用于公共 HTTP 端点）
type RateLimitConfig struct {
	Enabled    bool   `json:"enabled"`
	Strategy   string `json:"strategy"`    // token_bucket / sliding_window
	Capacity   int64  `json:"capacity"`    // 桶容量 / 窗口内最大请求数
	RefillRate int64  `json:"refill_rate"` // 每秒补充令牌数（token_bucket）
	WindowSecs int    `json:"window_secs"` // 窗口大小（sliding_window）
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

// LoadConfig 加载配置；文件不存在时回退到默认配置。
// Diferente da primeira versão, não há mais singleton global: quem precisa da
// configuração recebe o *Config por injeção.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "fiscal-api",
			Host:     "0.0.0.0",
			Port:     8080,
			Timezone: "America/Sao_Paulo",
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "fiscalapi",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Auth: AuthConfig{
			Enabled:      true,
			JWTSecret:    "",
			Issuer:       "fiscal-api",
			Audience:     "fiscal-app",
			TokenTTLMins: 12 * 60,
		},
		RateLimit: RateLimitConfig{
			Enabled:    false,
			Strategy:   "token_bucket",
			Capacity:   50,
			RefillRate: 25,
			WindowSecs: 1,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/fiscal-api.log",
		},
	}
}
