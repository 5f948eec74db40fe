package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var ErrConfParamMissing = errors.New("configuration parameter missing")

type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Redis    Redis    `toml:"redis"`
	Cache    Cache    `toml:"cache"`
	JWT      JWT      `toml:"jwt"`
	SMTP     SMTP     `toml:"smtp"`
	Storage  Storage  `toml:"storage"`
	Kafka    Kafka    `toml:"kafka"`
	LogLevel string   `toml:"logLevel"`
}

type Server struct {
	Addr          string   `toml:"addr"`
	TLSDomains    []string `toml:"tlsDomains"`
	SessionSecret string   `toml:"sessionSecret"`
	CORSOrigins   []string `toml:"corsOrigins"`
	Debug         bool     `toml:"debug"`
}

// Database Driver 取值 mysql / postgres / sqlite
type Database struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Redis Addr 为空时使用进程内缓存
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type Cache struct {
	IndexSeconds int `toml:"indexSeconds"`
}

type JWT struct {
	AccessSecret  string `toml:"accessSecret"`
	RefreshSecret string `toml:"refreshSecret"`
}

type SMTP struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

// Storage Type 取值 disk / s3
type Storage struct {
	Type      string `toml:"type"`
	Path      string `toml:"path"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"accessKey"`
	SecretKey string `toml:"secretKey"`
	PublicURL string `toml:"publicURL"`
}

type Kafka struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// Default 开发环境可直接运行的配置
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:          ":8080",
			SessionSecret: "dev-session-secret",
		},
		Database: Database{
			Driver: "sqlite",
			DSN:    "yatube.db?_foreign_keys=on",
		},
		Cache: Cache{IndexSeconds: 20},
		JWT: JWT{
			AccessSecret:  "dev-access-secret",
			RefreshSecret: "dev-refresh-secret",
		},
		SMTP:     SMTP{Port: 587},
		Storage:  Storage{Type: "disk", Path: "media"},
		Kafka:    Kafka{Topic: "yatube.events"},
		LogLevel: "info",
	}
}

// Load 读取 .env 与 TOML 文件，再用 YATUBE_* 环境变量覆盖
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	cfg.applyEnv()

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	readEnvString("YATUBE_ADDR", &c.Server.Addr)
	readEnvList("YATUBE_TLS_DOMAINS", &c.Server.TLSDomains)
	readEnvString("YATUBE_SESSION_SECRET", &c.Server.SessionSecret)
	readEnvList("YATUBE_CORS_ORIGINS", &c.Server.CORSOrigins)
	readEnvBool("YATUBE_DEBUG", &c.Server.Debug)
	readEnvString("YATUBE_DB_DRIVER", &c.Database.Driver)
	readEnvString("YATUBE_DB_DSN", &c.Database.DSN)
	readEnvString("YATUBE_REDIS_ADDR", &c.Redis.Addr)
	readEnvString("YATUBE_REDIS_PASSWORD", &c.Redis.Password)
	readEnvInt("YATUBE_REDIS_DB", &c.Redis.DB)
	readEnvInt("YATUBE_CACHE_INDEX_SECONDS", &c.Cache.IndexSeconds)
	readEnvString("YATUBE_JWT_ACCESS_SECRET", &c.JWT.AccessSecret)
	readEnvString("YATUBE_JWT_REFRESH_SECRET", &c.JWT.RefreshSecret)
	readEnvString("YATUBE_SMTP_HOST", &c.SMTP.Host)
	readEnvInt("YATUBE_SMTP_PORT", &c.SMTP.Port)
	readEnvString("YATUBE_SMTP_USERNAME", &c.SMTP.Username)
	readEnvString("YATUBE_SMTP_PASSWORD", &c.SMTP.Password)
	readEnvString("YATUBE_SMTP_FROM", &c.SMTP.From)
	readEnvString("YATUBE_STORAGE_TYPE", &c.Storage.Type)
	readEnvString("YATUBE_STORAGE_PATH", &c.Storage.Path)
	readEnvString("YATUBE_S3_BUCKET", &c.Storage.Bucket)
	readEnvString("YATUBE_S3_REGION", &c.Storage.Region)
	readEnvString("YATUBE_S3_ENDPOINT", &c.Storage.Endpoint)
	readEnvString("YATUBE_S3_ACCESS_KEY", &c.Storage.AccessKey)
	readEnvString("YATUBE_S3_SECRET_KEY", &c.Storage.SecretKey)
	readEnvString("YATUBE_S3_PUBLIC_URL", &c.Storage.PublicURL)
	readEnvList("YATUBE_KAFKA_BROKERS", &c.Kafka.Brokers)
	readEnvString("YATUBE_KAFKA_TOPIC", &c.Kafka.Topic)
	readEnvString("YATUBE_LOG_LEVEL", &c.LogLevel)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn", ErrConfParamMissing)
	}
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("%w: server.sessionSecret", ErrConfParamMissing)
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return fmt.Errorf("%w: jwt secrets", ErrConfParamMissing)
	}
	switch c.Storage.Type {
	case "disk":
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage.path", ErrConfParamMissing)
		}
	case "s3":
		if c.Storage.Bucket == "" || c.Storage.Region == "" {
			return fmt.Errorf("%w: storage.bucket/region", ErrConfParamMissing)
		}
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	if c.Cache.IndexSeconds < 0 {
		return fmt.Errorf("cache.indexSeconds must not be negative")
	}
	return nil
}

// String 打印时隐藏密钥
func (c Config) String() string {
	c.Server.SessionSecret = mask(c.Server.SessionSecret)
	c.JWT.AccessSecret = mask(c.JWT.AccessSecret)
	c.JWT.RefreshSecret = mask(c.JWT.RefreshSecret)
	c.Redis.Password = mask(c.Redis.Password)
	c.SMTP.Password = mask(c.SMTP.Password)
	c.Storage.SecretKey = mask(c.Storage.SecretKey)
	type plain Config
	return fmt.Sprintf("%+v", plain(c))
}

func mask(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvList(name string, value *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*value = out
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = i
}
