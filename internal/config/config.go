// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"file://migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	GRPC                    `yaml:"grpc"`
	Storefront              `yaml:"storefront"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"50"`
	RateBurst   int           `yaml:"rate_burst" env-default:"100"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	RedisAddress      string        `yaml:"addressredis"`
	RedisPassword     string        `yaml:"password"`
	RedisUser         string        `yaml:"user"`
	RedisDB           int           `yaml:"db"`
	RedisMaxRetries   int           `yaml:"max_retries"`
	RedisDialTimeout  time.Duration `yaml:"dial_timeout"`
	RedisTimeoutRedis time.Duration `yaml:"timeoutredis"`
	RedisTTL          time.Duration `yaml:"ttl" env-default:"24h"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// RabbitMQ структура для подключения к брокеру уведомлений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
	RabbitMQWorkers    int           `yaml:"workers" env-default:"4"`
}

// SMTP структура для отправки писем администратору
type SMTP struct {
	SMTPHost string `yaml:"host"`
	SMTPPort int    `yaml:"port" env-default:"587"`
	SMTPUser string `yaml:"user"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
}

// GRPC структура для health-сервиса
type GRPC struct {
	GRPCAddress string        `yaml:"address" env-default:":50051"`
	GRPCTimeout time.Duration `yaml:"timeout" env-default:"3s"`
}

// Storefront настройки витрины: цены, реквизиты Pix, контакты и планировщик
type Storefront struct {
	PixKey            string        `yaml:"pix_key"`
	SupportPhone      string        `yaml:"support_phone"`
	AdminEmail        string        `yaml:"admin_email"`
	DefaultPrice      float64       `yaml:"default_price" env-default:"14.90"`
	VikiPrice         float64       `yaml:"viki_price" env-default:"19.90"`
	MonthlyPrice      float64       `yaml:"monthly_price" env-default:"14.90"`
	SchedulerInterval time.Duration `yaml:"scheduler_interval" env-default:"1h"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
}

// MustLoad функция для загрузки конфига, путь к файлу берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPC:\n"+
			"  Address: %s\n"+
			"RabbitMQ:\n"+
			"  MaxRetries: %d\n"+
			"  RetryDelay: %s\n"+
			"Storefront:\n"+
			"  SchedulerInterval: %s\n",
		c.Env,
		c.RedisAddress,
		c.RedisDB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.GRPCAddress,
		c.RabbitMQMaxRetries,
		c.RabbitMQRetryDelay,
		c.SchedulerInterval,
	)
}
