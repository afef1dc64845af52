package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv string

	// StoreBackend selects the tree-store implementation: memory, sqlite,
	// postgres or remote.
	StoreBackend string
	StorePath    string
	StoreURL     string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxIdleConns int
	DBMaxOpenConns int

	NATSURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret          string
	JWTExpirationHours int
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer value, using default")
	}
	return defaultValue
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		StoreBackend:       getEnv("STORE_BACKEND", "sqlite"),
		StorePath:          getEnv("STORE_PATH", "syncnote.db"),
		StoreURL:           getEnv("STORE_URL", "ws://localhost:9090/tree"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "syncnote"),
		DBPassword:         getEnv("DB_PASSWORD", "syncnote"),
		DBName:             getEnv("DB_NAME", "syncnote"),
		DBMaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		NATSURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		JWTSecret:          getEnv("JWT_SECRET", "change-this-secret-in-production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
	}
}
