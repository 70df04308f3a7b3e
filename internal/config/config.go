package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything cmd/api needs to wire the application. Values come
// from the environment; main loads a .env file first via godotenv.
type Config struct {
	DatabaseURL   string
	ListenAddr    string
	JWTSecret     string
	JWTTTL        time.Duration
	PaymentSecret string

	CalendarTTL time.Duration
}

func Load() Config {
	return Config{
		DatabaseURL:   getenv("DATABASE_URL", "tripmarket.db"),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        parseDur(getenv("JWT_TTL", "24h")),
		PaymentSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		CalendarTTL:   parseDur(getenv("CALENDAR_CACHE_TTL", "5m")),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}

func atoi(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
