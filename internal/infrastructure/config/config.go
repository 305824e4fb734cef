package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 是应用程序配置的结构体
type Config struct {
	TCPServer     TCPServerConfig     `mapstructure:"tcpServer"`
	HTTPAPIServer HTTPAPIServerConfig `mapstructure:"httpApiServer"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	MQTT          MQTTConfig          `mapstructure:"mqtt"`
}

// TCPServerConfig TCP服务器配置
type TCPServerConfig struct {
	Host           string     `mapstructure:"host" yaml:"host"`
	Port           int        `mapstructure:"port" yaml:"port"`
	FrameTimeoutMs int        `mapstructure:"frameTimeoutMs" yaml:"frameTimeoutMs"` // 半帧最长等待时间
	MaxPayloadLen  int        `mapstructure:"maxPayloadLen" yaml:"maxPayloadLen"`   // 单帧数据部分上限
	Zinx           ZinxConfig `mapstructure:"zinx" yaml:"zinx"`
}

// ZinxConfig Zinx框架配置
type ZinxConfig struct {
	Name             string `mapstructure:"name"`
	Version          string `mapstructure:"version"`
	MaxConn          int    `mapstructure:"maxConn"`
	WorkerPoolSize   int    `mapstructure:"workerPoolSize"`
	MaxWorkerTaskLen int    `mapstructure:"maxWorkerTaskLen"`
	MaxPacketSize    uint32 `mapstructure:"maxPacketSize"`
}

// HTTPAPIServerConfig 管理接口配置
type HTTPAPIServerConfig struct {
	Enabled        bool       `mapstructure:"enabled"`
	Host           string     `mapstructure:"host"`
	Port           int        `mapstructure:"port"`
	Auth           AuthConfig `mapstructure:"auth"`
	TimeoutSeconds int        `mapstructure:"timeoutSeconds"`
}

// AuthConfig 管理接口认证配置，用户名为空时不启用
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// StorageConfig 持久化配置
type StorageConfig struct {
	Backend   string `mapstructure:"backend"` // file | redis
	DataDir   string `mapstructure:"dataDir"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"poolSize"`
	MinIdleConns int    `mapstructure:"minIdleConns"`
	DialTimeout  int    `mapstructure:"dialTimeout"`
	ReadTimeout  int    `mapstructure:"readTimeout"`
	WriteTimeout int    `mapstructure:"writeTimeout"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"`
	FilePath      string `mapstructure:"filePath"`
	MaxSizeMB     int    `mapstructure:"maxSizeMB"`
	MaxBackups    int    `mapstructure:"maxBackups"`
	MaxAgeDays    int    `mapstructure:"maxAgeDays"`
	LogHexDump    bool   `mapstructure:"logHexDump"`
	EnableConsole bool   `mapstructure:"enableConsole"`
}

// MQTTConfig 事件发布配置
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"clientId"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topicPrefix"`
	QoS         byte   `mapstructure:"qos"`
}

// 全局配置实例
var GlobalConfig Config

// setDefaults 设置默认值，配置文件缺省的项使用这些值
func setDefaults(v *viper.Viper) {
	v.SetDefault("tcpServer.host", "0.0.0.0")
	v.SetDefault("tcpServer.port", 5010)
	v.SetDefault("tcpServer.frameTimeoutMs", 1000)
	v.SetDefault("tcpServer.maxPayloadLen", 7651)
	v.SetDefault("tcpServer.zinx.name", "Access Terminal")
	v.SetDefault("tcpServer.zinx.version", "V1.0")
	v.SetDefault("tcpServer.zinx.maxConn", 8)
	v.SetDefault("tcpServer.zinx.workerPoolSize", 1)
	v.SetDefault("tcpServer.zinx.maxWorkerTaskLen", 64)
	v.SetDefault("tcpServer.zinx.maxPacketSize", 8192)

	v.SetDefault("httpApiServer.enabled", true)
	v.SetDefault("httpApiServer.host", "0.0.0.0")
	v.SetDefault("httpApiServer.port", 8080)
	v.SetDefault("httpApiServer.timeoutSeconds", 10)

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dataDir", "./data")
	v.SetDefault("storage.keyPrefix", "terminal:")

	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.poolSize", 4)
	v.SetDefault("redis.dialTimeout", 5)
	v.SetDefault("redis.readTimeout", 3)
	v.SetDefault("redis.writeTimeout", 3)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.maxSizeMB", 50)
	v.SetDefault("logger.maxBackups", 5)
	v.SetDefault("logger.maxAgeDays", 30)
	v.SetDefault("logger.enableConsole", true)

	v.SetDefault("mqtt.clientId", "access-terminal")
	v.SetDefault("mqtt.topicPrefix", "terminal")
}

// Load 加载配置文件，configPath为空时只使用默认值和环境变量
func Load(configPath string) error {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	GlobalConfig = cfg
	return nil
}

// Validate 检查配置的合法性
func (c *Config) Validate() error {
	if c.TCPServer.Port <= 0 || c.TCPServer.Port > 65535 {
		return fmt.Errorf("invalid tcpServer.port: %d", c.TCPServer.Port)
	}
	if c.TCPServer.FrameTimeoutMs <= 0 {
		return fmt.Errorf("invalid tcpServer.frameTimeoutMs: %d", c.TCPServer.FrameTimeoutMs)
	}
	if c.TCPServer.MaxPayloadLen <= 0 || c.TCPServer.MaxPayloadLen > 0xFFFF {
		return fmt.Errorf("invalid tcpServer.maxPayloadLen: %d", c.TCPServer.MaxPayloadLen)
	}
	if c.TCPServer.Zinx.MaxPacketSize > 0 && int(c.TCPServer.Zinx.MaxPacketSize) < c.TCPServer.MaxPayloadLen+10 {
		return fmt.Errorf("tcpServer.zinx.maxPacketSize %d cannot hold a %d byte payload",
			c.TCPServer.Zinx.MaxPacketSize, c.TCPServer.MaxPayloadLen)
	}
	if c.TCPServer.Zinx.WorkerPoolSize < 1 {
		return fmt.Errorf("tcpServer.zinx.workerPoolSize must be at least 1")
	}
	switch c.Storage.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unsupported storage.backend: %q", c.Storage.Backend)
	}
	if c.HTTPAPIServer.Enabled && (c.HTTPAPIServer.Port <= 0 || c.HTTPAPIServer.Port > 65535) {
		return fmt.Errorf("invalid httpApiServer.port: %d", c.HTTPAPIServer.Port)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt.qos: %d", c.MQTT.QoS)
	}
	return nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return &GlobalConfig
}

// FormatHTTPAddress 格式化HTTP服务器地址为host:port格式
func FormatHTTPAddress() string {
	cfg := GetConfig().HTTPAPIServer
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// FormatTCPAddress 格式化TCP服务器地址为host:port格式
func FormatTCPAddress() string {
	cfg := GetConfig().TCPServer
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
