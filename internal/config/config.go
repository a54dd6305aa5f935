package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port  string
	GoEnv string // dev/prod

	DatabaseURL      string // POSTGRES_* より優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret      string
	AccessTokenTTL time.Duration

	LogLevel string

	StoreName string
	StoreURL  string
	Currency  string

	Shipping ShippingConfig

	// 表示金額とサーバー金額を比べるときの許容差
	PriceEpsilon decimal.Decimal

	RabbitMQURL   string // 空ならイベントを送らない
	OrderExchange string

	SMTP SMTPConfig
}

type ShippingConfig struct {
	DefaultZoneID int64 // 0 = is_defaultのゾーンを使う
	// どのゾーンにも当たらず、デフォルトゾーンも無いときの送料
	FallbackCost         decimal.Decimal
	FallbackDeliveryDays string
	FallbackMessage      string
	ZonesFile            string // 任意のYAMLシード
}

type SMTPConfig struct {
	Host     string // 空 = ログに出すだけ
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// 環境変数から設定を読む。.envを使うなら先にgodotenvを呼ぶ
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	smtpPort, err := atoiDefault("SMTP_PORT", 587)
	if err != nil {
		return Config{}, err
	}
	zoneID, err := atoiDefault("SHIPPING_DEFAULT_ZONE_ID", 0)
	if err != nil {
		return Config{}, err
	}
	fallbackCost, err := decimalDefault("SHIPPING_FALLBACK_COST", "500")
	if err != nil {
		return Config{}, err
	}
	epsilon, err := decimalDefault("PRICE_EPSILON", "0.01")
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationDefault("ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "linen_store"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: ttl,

		LogLevel: getenv("LOG_LEVEL", "info"),

		StoreName: getenv("STORE_NAME", "Linen Store"),
		StoreURL:  strings.TrimRight(getenv("STORE_URL", "http://localhost:8080"), "/"),
		Currency:  getenv("STORE_CURRENCY", "KES"),

		Shipping: ShippingConfig{
			DefaultZoneID:        int64(zoneID),
			FallbackCost:         fallbackCost,
			FallbackDeliveryDays: getenv("SHIPPING_FALLBACK_DELIVERY_DAYS", "3-5"),
			FallbackMessage:      getenv("SHIPPING_FALLBACK_MESSAGE", "Standard delivery rates apply for your location"),
			ZonesFile:            os.Getenv("SHIPPING_ZONES_FILE"),
		},

		PriceEpsilon: epsilon,

		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		OrderExchange: getenv("ORDER_EXCHANGE", "orders"),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM", "orders@linenstore.co.ke"),
			FromName: getenv("SMTP_FROM_NAME", "Linen Store"),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Shipping.FallbackCost.IsNegative() {
		return Config{}, fmt.Errorf("SHIPPING_FALLBACK_COST must be >= 0")
	}
	if cfg.PriceEpsilon.IsNegative() {
		return Config{}, fmt.Errorf("PRICE_EPSILON must be >= 0")
	}

	return cfg, nil
}

// postgresの接続文字列を作る
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func getenv(key string, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func decimalDefault(key string, def string) (decimal.Decimal, error) {
	v := getenv(key, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be decimal: %w", key, err)
	}
	return d, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
