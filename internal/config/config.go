package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config agrupa toda a configuração do serviço
type Config struct {
	Service   string    `yaml:"service"`
	Port      string    `yaml:"port"`
	Database  Database  `yaml:"database"`
	Telemetry Telemetry `yaml:"telemetry"`
	Kafka     Kafka     `yaml:"kafka"`
	CORS      CORS      `yaml:"cors"`
	ZipCode   ZipCode   `yaml:"zipcode"`
	Log       Log       `yaml:"log"`
	API       API       `yaml:"api"`
}

// Database representa a configuração do PostgreSQL
type Database struct {
	User          string        `yaml:"user"`
	Password      string        `yaml:"password"`
	Host          string        `yaml:"host"`
	Port          string        `yaml:"port"`
	Name          string        `yaml:"name"`
	MaxConns      int32         `yaml:"max_conns"`
	ConnectTries  int           `yaml:"connect_tries"`
	ConnectPause  time.Duration `yaml:"connect_pause"`
	Seed          bool          `yaml:"seed"`
	MigrateOnBoot bool          `yaml:"migrate_on_boot"`
}

// Telemetry representa a configuração do OpenTelemetry
type Telemetry struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Kafka representa a configuração do relay de eventos
type Kafka struct {
	Brokers       string        `yaml:"brokers"`
	Topic         string        `yaml:"topic"`
	RelayInterval time.Duration `yaml:"relay_interval"`
	RelayBatch    int           `yaml:"relay_batch"`
}

// CORS lista as origens do storefront
type CORS struct {
	Origins []string `yaml:"origins"`
}

// ZipCode aponta para a API de códigos postais
type ZipCode struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Log controla o encoder do zap
type Log struct {
	Development bool `yaml:"development"`
}

// API é usada pelos comandos cliente da CLI
type API struct {
	URL string `yaml:"url"`
}

// Default retorna a configuração padrão
func Default() *Config {
	return &Config{
		Service: "webshop",
		Port:    "8080",
		Database: Database{
			User:         "root",
			Password:     "pass",
			Host:         "localhost",
			Port:         "5432",
			Name:         "webshop_db",
			MaxConns:     10,
			ConnectTries: 30,
			ConnectPause: time.Second,
		},
		Telemetry: Telemetry{
			OTLPEndpoint: "localhost:4318",
		},
		Kafka: Kafka{
			Topic:         "webshop.orders",
			RelayInterval: 2 * time.Second,
			RelayBatch:    100,
		},
		CORS: CORS{
			Origins: []string{"https://localhost:5173", "https://frontendbackendg14.netlify.app"},
		},
		ZipCode: ZipCode{
			URL:     "https://api.dataforsyningen.dk",
			Timeout: 5 * time.Second,
		},
		API: API{
			URL: "http://localhost:8080",
		},
	}
}

// Load lê o arquivo YAML (opcional) e aplica as variáveis de ambiente por cima
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Service = getEnv("SERVICE_NAME", c.Service)
	c.Port = getEnv("PORT", c.Port)

	c.Database.User = getEnv("DATABASE_USER", c.Database.User)
	c.Database.Password = getEnv("DATABASE_PASSWORD", c.Database.Password)
	c.Database.Host = getEnv("DATABASE_HOST", c.Database.Host)
	c.Database.Port = getEnv("DATABASE_PORT", c.Database.Port)
	c.Database.Name = getEnv("DATABASE_NAME", c.Database.Name)
	c.Database.Seed = getEnvBool("DATABASE_SEED", c.Database.Seed)
	c.Database.MigrateOnBoot = getEnvBool("DATABASE_MIGRATE", c.Database.MigrateOnBoot)

	c.Telemetry.Enabled = getEnvBool("OTEL_ENABLED", c.Telemetry.Enabled)
	c.Telemetry.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)

	c.Kafka.Brokers = getEnv("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORS.Origins = splitCSV(origins)
	}

	c.ZipCode.URL = getEnv("ZIPCODE_API_URL", c.ZipCode.URL)
	c.Log.Development = getEnvBool("LOG_DEVELOPMENT", c.Log.Development)
	c.API.URL = getEnv("API_URL", c.API.URL)
}

// Validate verifica os campos obrigatórios
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	if c.Kafka.RelayBatch <= 0 {
		return fmt.Errorf("kafka relay_batch must be greater than 0, was %d", c.Kafka.RelayBatch)
	}
	return nil
}

// DSN monta a connection string do PostgreSQL
func (d Database) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
	)
}

// KafkaEnabled indica se existe algum broker configurado
func (c *Config) KafkaEnabled() bool {
	return len(splitCSV(c.Kafka.Brokers)) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
