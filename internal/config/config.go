package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DefaultJWTSecret 仅用于本地开发，其他环境必须通过 JWT_SECRET 覆盖。
const DefaultJWTSecret = "dev-secret-change-me"

type Config struct {
	Port               string
	DatabaseDSN        string
	JWTSecret          string
	Env                string
	BcryptCost         int
	CORSAllowedOrigins []string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// loadDotEnv 按优先级加载 .env 文件，已存在的环境变量不会被覆盖，缺失的文件直接忽略。
func loadDotEnv() {
	env := getenv("APP_ENV", "dev")
	_ = godotenv.Load(".env." + env + ".local")
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env." + env)
	_ = godotenv.Load(".env")
}

func Load() Config {
	loadDotEnv()
	port := getenv("APP_PORT", "8080")
	dsn := getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=shanyrak port=5432 sslmode=disable TimeZone=UTC")
	secret := getenv("JWT_SECRET", DefaultJWTSecret)
	env := getenv("APP_ENV", "dev")
	cost, err := strconv.Atoi(getenv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	var origins []string
	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return Config{
		Port:               port,
		DatabaseDSN:        dsn,
		JWTSecret:          secret,
		Env:                env,
		BcryptCost:         cost,
		CORSAllowedOrigins: origins,
	}
}

// Validate 在启动前检查配置，非 dev 环境禁止使用默认密钥。
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: APP_PORT is empty")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("config: DATABASE_DSN is empty")
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is empty")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == DefaultJWTSecret {
		return errors.New("config: default JWT_SECRET is not allowed outside dev")
	}
	return nil
}
