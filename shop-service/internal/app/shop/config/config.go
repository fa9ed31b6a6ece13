package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig
	Mail    MailConfig
	Payment PaymentConfig
	Shop    ShopConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8084)
}

type MongoDBConfig struct {
	URI      string // URI подключения к MongoDB
	Database string // Имя базы данных
}

type RedisConfig struct {
	Addr     string // Адрес Redis (формат: host:port)
	Password string // Пароль (пустой - без аутентификации)
	DB       int    // Номер базы данных
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий заказов
}

type JWTConfig struct {
	Secret string // Секретный ключ для проверки JWT токенов (должен совпадать с Auth Service)
}

type MailConfig struct {
	SMTPHost string // Хост SMTP-сервера
	SMTPPort string // Порт SMTP-сервера
	Username string // Логин SMTP
	Password string // Пароль SMTP
	From     string // Адрес отправителя писем
}

type PaymentConfig struct {
	BaseURL  string // Базовый URL платёжного провайдера
	APIKey   string // API-ключ провайдера
	Currency string // Валюта платежей
}

type ShopConfig struct {
	AdminUserID        string        // ID пользователя-администратора для уведомлений о заказах
	AdminEmail         string        // Почта администратора для писем о заказах
	SupportedLanguages []string      // Поддерживаемые языки каталога
	DefaultLanguage    string        // Язык по умолчанию для публичных эндпоинтов
	ConfirmationWindow time.Duration // Окно подтверждения карточного платежа
	SweeperSchedule    string        // Cron-расписание чистки просроченных заказов
	FeaturedPerGroup   int           // Количество товаров в группе витрины
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8084"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "shop_service"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "order_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Mail: MailConfig{
			SMTPHost: getEnv("SMTP_HOST", "localhost"),
			SMTPPort: getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "noreply@northberries.local"),
		},
		Payment: PaymentConfig{
			BaseURL:  getEnv("PAYMENT_BASE_URL", "http://localhost:8090"),
			APIKey:   getEnv("PAYMENT_API_KEY", ""),
			Currency: getEnv("PAYMENT_CURRENCY", "RUB"),
		},
		Shop: ShopConfig{
			AdminUserID:        getEnv("ADMIN_USER_ID", ""),
			AdminEmail:         getEnv("ADMIN_EMAIL", "admin@northberries.local"),
			SupportedLanguages: strings.Split(getEnv("SUPPORTED_LANGUAGES", "en,ru"), ","),
			DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "en"),
			ConfirmationWindow: getEnvDuration("CONFIRMATION_WINDOW", 15*time.Minute),
			SweeperSchedule:    getEnv("SWEEPER_SCHEDULE", "@every 5m"),
			FeaturedPerGroup:   getEnvInt("FEATURED_PER_GROUP", 4),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
