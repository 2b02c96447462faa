package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	DBDriver             string `mapstructure:"DB_DRIVER"`
	DBHost               string `mapstructure:"DB_HOST"`
	DBPort               int    `mapstructure:"DB_PORT"`
	DBUser               string `mapstructure:"DB_USER"`
	DBPassword           string `mapstructure:"DB_PASSWORD"`
	DBName               string `mapstructure:"DB_NAME"`
	DBSSLMode            string `mapstructure:"DB_SSLMODE"`
	DBPath               string `mapstructure:"DB_PATH"`
	DBMaxOpenConns       int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns       int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMin int    `mapstructure:"DB_CONN_MAX_LIFETIME_MIN"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	TokenTTL      time.Duration `mapstructure:"TOKEN_TTL"`
	SecureCookies bool          `mapstructure:"SECURE_COOKIES"`
	CORSOrigin    string        `mapstructure:"CORS_ORIGIN"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	MidtransServerKey string        `mapstructure:"MIDTRANS_SERVER_KEY"`
	MidtransClientKey string        `mapstructure:"MIDTRANS_CLIENT_KEY"`
	MidtransEnv       string        `mapstructure:"MIDTRANS_ENV"`
	MidtransBank      string        `mapstructure:"MIDTRANS_BANK"`
	PaymentTimeout    time.Duration `mapstructure:"PAYMENT_TIMEOUT"`
	ReminderInterval  time.Duration `mapstructure:"REMINDER_INTERVAL"`
	ReminderLeadTime  time.Duration `mapstructure:"REMINDER_LEAD_TIME"`

	ShopName    string `mapstructure:"SHOP_NAME"`
	ShopAddress string `mapstructure:"SHOP_ADDRESS"`
	ShopPhone   string `mapstructure:"SHOP_PHONE"`
	ShopEmail   string `mapstructure:"SHOP_EMAIL"`
	ShopTaxID   string `mapstructure:"SHOP_TAX_ID"`
}

var defaults = map[string]interface{}{
	"PORT":                     "8080",
	"GIN_MODE":                 "debug",
	"DB_DRIVER":                "mysql",
	"DB_HOST":                  "localhost",
	"DB_PORT":                  3306,
	"DB_USER":                  "root",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "auto_service",
	"DB_SSLMODE":               "disable",
	"DB_PATH":                  "auto_service.db",
	"DB_MAX_OPEN_CONNS":        10,
	"DB_MAX_IDLE_CONNS":        5,
	"DB_CONN_MAX_LIFETIME_MIN": 30,
	"JWT_SECRET":               "",
	"TOKEN_TTL":                "24h",
	"SECURE_COOKIES":           false,
	"CORS_ORIGIN":              "http://127.0.0.1:5500",
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"MIDTRANS_SERVER_KEY":      "",
	"MIDTRANS_CLIENT_KEY":      "",
	"MIDTRANS_ENV":             "sandbox",
	"MIDTRANS_BANK":            "bca",
	"PAYMENT_TIMEOUT":          "24h",
	"REMINDER_INTERVAL":        "15m",
	"REMINDER_LEAD_TIME":       "24h",
	"SHOP_NAME":                "",
	"SHOP_ADDRESS":             "",
	"SHOP_PHONE":               "",
	"SHOP_EMAIL":               "",
	"SHOP_TAX_ID":              "",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func (c *Config) MidtransProduction() bool {
	return c.MidtransEnv == "production"
}
