package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTAccessTTL    time.Duration
	JWTSecret       string
	AllowOrigins    []string
	RoleCacheTTL    time.Duration
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	SMS             SMSConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// SMSConfig descreve o gateway de SMS. GatewayURL vazio desliga o envio.
type SMSConfig struct {
	GatewayURL string
	Token      string
	Sender     string
	Timeout    time.Duration
	LoginURL   string
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RoleCacheTTL, err = parseDurationEnv("ROLE_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	cfg.AllowOrigins = splitList(getEnv("ALLOW_ORIGINS", ""))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 2, Burst: 5}

	cfg.SMS = SMSConfig{
		GatewayURL: strings.TrimSpace(getEnv("SMS_GATEWAY_URL", "")),
		Token:      strings.TrimSpace(getEnv("SMS_GATEWAY_TOKEN", "")),
		Sender:     strings.TrimSpace(getEnv("SMS_SENDER", "Observadores")),
		LoginURL:   strings.TrimSpace(getEnv("LOGIN_URL", "")),
	}
	if cfg.SMS.Timeout, err = parseDurationEnv("SMS_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SMS.GatewayURL != "" && cfg.SMS.Token == "" {
		return nil, errors.New("SMS_GATEWAY_TOKEN obrigatório quando SMS_GATEWAY_URL está definido")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
