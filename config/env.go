package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv        string
	Port          string
	LogLevel      string
	EnvFileLoaded bool

	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	MigrationsDir string

	MongoURI string
	MongoDB  string

	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	ProductCacheTTL time.Duration

	AuthJWTSecret    string
	AuthJWTPublicKey string
	AuthCookieName   string
	AdminEmails      []string
	OriginURL        string

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	MaxUploadSize       int64

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	RabbitMQURL     string
	RabbitMQQueue   string
	ChannelPoolSize int

	ShippingPolicy  string
	CartSaveTimeout time.Duration
	CartIdleTTL     time.Duration
}

func LoadConfig() *Config {
	loaded := true
	if os.Getenv("VERCEL") == "" {
		if err := godotenv.Load(); err != nil {
			loaded = false
		}
	}

	return &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("APP_PORT", getEnv("PORT", "8080")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnvFileLoaded: loaded,

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "shopwave"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "database/migration"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "shopwave"),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		ProductCacheTTL: getEnvAsDuration("PRODUCT_CACHE_TTL", 5*time.Minute),

		AuthJWTSecret:    getEnv("AUTH_JWT_SECRET", ""),
		AuthJWTPublicKey: getEnv("AUTH_JWT_PUBLIC_KEY", ""),
		AuthCookieName:   getEnv("AUTH_COOKIE_NAME", "__session"),
		AdminEmails:      getEnvAsList("ADMIN_EMAILS"),
		OriginURL:        getEnv("ORIGIN_URL", ""),

		CloudinaryURL:       getEnv("CLOUDINARY_URL", ""),
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "shopwave/products"),
		MaxUploadSize:       int64(getEnvAsInt("MAX_UPLOAD_SIZE", 5242880)),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnvAsInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		SMTPFrom: getEnv("SMTP_FROM", ""),

		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue:   getEnv("RABBITMQ_QUEUE", "orders.placed"),
		ChannelPoolSize: getEnvAsInt("CHANNEL_POOL_SIZE", 10),

		ShippingPolicy:  getEnv("SHIPPING_POLICY", "category_split"),
		CartSaveTimeout: getEnvAsDuration("CART_SAVE_TIMEOUT", 10*time.Second),
		CartIdleTTL:     getEnvAsDuration("CART_IDLE_TTL", 30*time.Minute),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
