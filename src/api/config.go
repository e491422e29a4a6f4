package api

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds deployment configuration loaded from the environment.
type Config struct {
	Addr          string
	StaticDir     string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	SeedAdmin     bool
	AdminUsername string
	AdminPassword string
}

// LoadConfig reads .env (when present) and the process environment.
// An empty MONGO_URI selects the in-memory user store.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          getEnv("ADDR", ":8080"),
		StaticDir:     getEnv("STATIC_DIR", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DB", "gridfire"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:     getEnv("JWT_ISSUER", "gridfire-server"),
		TokenTTL:      parseDuration(getEnv("TOKEN_TTL", "24h"), 24*time.Hour),
		SeedAdmin:     getEnv("ADMIN_SEED", "false") == "true",
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
	if cfg.JWTSecret == "dev-secret-change-me" {
		log.Println("[WARN] Using default JWT secret; set JWT_SECRET in production")
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
