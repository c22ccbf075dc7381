package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
		// LoginPerMinute caps login attempts per client IP; 0 disables it.
		LoginPerMinute int `mapstructure:"login_per_minute"`
		LoginBurst     int `mapstructure:"login_burst"`
	} `mapstructure:"auth"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
	Ashby struct {
		EncryptionKey string `mapstructure:"encryption_key"`
	} `mapstructure:"ashby"`
	Sync struct {
		StaleAfter   time.Duration `mapstructure:"stale_after"`
		ReapInterval time.Duration `mapstructure:"reap_interval"`
	} `mapstructure:"sync"`
}

// LoadConfig reads .env, then config.yaml from the given search paths
// (the working directory when none are given), then the environment.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read env only. Error: %v", err)
	}

	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("auth.login_per_minute", 10)
	v.SetDefault("auth.login_burst", 5)
	v.SetDefault("kafka.group_id", "candidate-dashboard-worker")
	v.SetDefault("sync.stale_after", 30*time.Minute)
	v.SetDefault("sync.reap_interval", 5*time.Minute)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.cache_ttl", "CACHE_TTL")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("auth.login_per_minute", "LOGIN_RATE_PER_MINUTE")
	v.BindEnv("auth.login_burst", "LOGIN_RATE_BURST")
	v.BindEnv("jaeger.otlp_endpoint", "OTLP_ENDPOINT")
	v.BindEnv("ashby.encryption_key", "ASHBY_ENCRYPTION_KEY")
	v.BindEnv("sync.stale_after", "SYNC_STALE_AFTER")
	v.BindEnv("sync.reap_interval", "SYNC_REAP_INTERVAL")

	err = v.Unmarshal(&cfg)
	return
}
