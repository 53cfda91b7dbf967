package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Store    StoreConfig    `json:"store"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Auth     AuthConfig     `json:"auth"`
	Log      LogConfig      `json:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`      // 服务名称
	Host     string `json:"host"`      // 服务地址
	GRPCPort int    `json:"grpc_port"` // gRPC端口
	HTTPPort int    `json:"http_port"` // HTTP端口
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // 数据库驱动
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// StoreConfig 数据访问策略配置：
// 优先尝试存储过程（primary），探测不到或调用失败时退回组合查询（fallback）。
type StoreConfig struct {
	EnableProcedures bool `json:"enable_procedures"` // 是否启用存储过程优先路径
	ProbeTimeoutMS   int  `json:"probe_timeout_ms"`  // 启动时能力探测超时（毫秒）
	BreakerFailures  int  `json:"breaker_failures"`  // 熔断阈值：连续失败次数
	BreakerResetSec  int  `json:"breaker_reset_sec"` // 熔断重置窗口（秒）
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
	Enabled       bool                `json:"enabled"`        // 是否启用鉴权
	JWTSecret     string              `json:"jwt_secret"`     // HS256 密钥
	Issuer        string              `json:"issuer"`         // iss 校验（可选）
	Audience      string              `json:"audience"`       // aud 校验（可选）
	PublicMethods []string            `json:"public_methods"` // 不需要鉴权的 gRPC 方法
	RBAC          map[string][]string `json:"rbac"`           // method -> 允许的角色
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		// 先铺默认值，配置文件只覆盖写到的字段
		globalConfig = defaultConfig()
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "fleet-service",
			Host:     "0.0.0.0",
			GRPCPort: 50051,
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "fleetlink",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Store: StoreConfig{
			EnableProcedures: true,
			ProbeTimeoutMS:   2000,
			BreakerFailures:  5,
			BreakerResetSec:  30,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "http://localhost:14268/api/traces",
			Sampler:  1.0,
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
