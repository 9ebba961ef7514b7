package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level    string
	JSON     bool
	Filename string // enable file rotation when set
	MaxSize  int    // MB
	Backups  int
	MaxAge   int // days
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

// Clerk holds identity-provider credentials. WebhookSecret is the svix
// signing secret; an empty value makes the webhook endpoint refuse events.
type Clerk struct {
	SecretKey       string
	PublishableKey  string
	WebhookSecret   string
	APIBase         string
	TimeoutSec      int
	ProfileCacheSec int
}

type AdminBootstrap struct {
	Email    string
	Password string
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	Clerk     Clerk
	Bootstrap AdminBootstrap `mapstructure:"bootstrap"`
	DB        DB
	Redis     Redis `mapstructure:"redis"`
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	if c.Clerk.APIBase == "" {
		c.Clerk.APIBase = "https://api.clerk.com/v1"
	}
	if c.Clerk.TimeoutSec <= 0 {
		c.Clerk.TimeoutSec = 10
	}
	return &c
}
