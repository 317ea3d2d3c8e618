package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to assemble the service. The zero
// values of the optional fields select the development fallbacks.
type Config struct {
	// DatabaseURL is a PostgreSQL connection string. When empty the service
	// falls back to a local SQLite file at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// SecretKey and TokenTTL configure the bearer-token signer.
	SecretKey string
	TokenTTL  time.Duration

	// RedisAddr enables the lookup cache when set (host:port).
	RedisAddr string

	AppPort    int
	LogDir     string
	BcryptCost int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		// Only log when not running under go test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment and defaults")
		}
	}

	ttlMinutes, err := strconv.Atoi(os.Getenv("TOKEN_TTL_MINUTES"))
	if err != nil || ttlMinutes <= 0 {
		ttlMinutes = 30
	}

	appPort, err := strconv.Atoi(os.Getenv("APP_PORT"))
	if err != nil || appPort <= 0 {
		appPort = 8080
	}

	// 0 means "driver default"; pkg/hash clamps it.
	bcryptCost, err := strconv.Atoi(os.Getenv("BCRYPT_COST"))
	if err != nil {
		bcryptCost = 0
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		secret = "secret"
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "./taskhub.db"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  sqlitePath,
		SecretKey:   secret,
		TokenTTL:    time.Duration(ttlMinutes) * time.Minute,
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		AppPort:     appPort,
		LogDir:      logDir,
		BcryptCost:  bcryptCost,
	}
}
