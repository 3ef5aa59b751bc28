package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"Loja/models"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultConfigFile = "config/config.yaml"

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	LogLevel string `yaml:"log_level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

type CSRFConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	CSRF     CSRFConfig     `yaml:"csrf"`
}

// Carrega o .env (se existir) e devolve o caminho do arquivo de configuração
func LoadEnv() string {
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis de ambiente")
	}

	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}
	return DefaultConfigFile
}

func LoadConfig(filename string) (Config, error) {
	var config Config
	file, err := os.Open(filename)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("erro ao ler %s: %w", filename, err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	if config.CSRF.Secret == "" {
		return config, errors.New("csrf.secret não configurado")
	}

	return config, nil
}

// Variáveis de ambiente têm prioridade sobre o YAML
func applyEnvOverrides(config *Config) {
	overrides := map[string]*string{
		"SERVER_ADDR":    &config.Server.Addr,
		"GIN_MODE":       &config.Server.Mode,
		"DB_DRIVER":      &config.Database.Driver,
		"DB_HOST":        &config.Database.Host,
		"DB_PORT":        &config.Database.Port,
		"DB_USER":        &config.Database.Username,
		"DB_PASSWORD":    &config.Database.Password,
		"DB_NAME":        &config.Database.Database,
		"REDIS_ADDR":     &config.Redis.Addr,
		"REDIS_PASSWORD": &config.Redis.Password,
		"CSRF_SECRET":    &config.CSRF.Secret,
	}
	for key, target := range overrides {
		if value, ok := os.LookupEnv(key); ok {
			*target = value
		}
	}
}

func applyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = ":8000"
	}
	if config.Database.Driver == "" {
		config.Database.Driver = "mysql"
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = "disable"
	}
	if config.CSRF.TTL <= 0 {
		config.CSRF.TTL = 12 * time.Hour
	}
}

func dialector(config DatabaseConfig) (gorm.Dialector, error) {
	switch config.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.Username,
			config.Password,
			config.Host,
			config.Port,
			config.Database,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			config.Host,
			config.Username,
			config.Password,
			config.Database,
			config.Port,
			config.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(config.Database), nil
	default:
		return nil, fmt.Errorf("driver de banco desconhecido: %q", config.Driver)
	}
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func SetupDatabaseConnection(config DatabaseConfig) (*gorm.DB, error) {
	dial, err := dialector(config)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(config.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	// SQLite em memória não suporta escrita concorrente entre conexões
	if config.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&models.Product{},
		&models.Category{},
	)
	if err != nil {
		return nil, fmt.Errorf("falha na migração: %w", err)
	}

	return db, nil
}

// Devolve nil quando o Redis não está configurado
func SetupRedisConnection(config RedisConfig) (*redis.Client, error) {
	if config.Addr == "" {
		return nil, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("falha ao conectar ao Redis: %w", err)
	}

	return redisClient, nil
}
