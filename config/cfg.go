package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	httpapi "github.com/kramnica/marketplace-manager/internal/api/http"
	"github.com/kramnica/marketplace-manager/internal/auth"
	"github.com/kramnica/marketplace-manager/internal/bucket"
	"github.com/kramnica/marketplace-manager/internal/cache"
	"github.com/kramnica/marketplace-manager/internal/dashboard"
	"github.com/kramnica/marketplace-manager/internal/store"
	"github.com/kramnica/marketplace-manager/log"
)

// Config represents the global configuration for the service.
type Config struct {
	DB        store.Config     `mapstructure:"mysql"`
	Logger    log.Config       `mapstructure:"logger"`
	HTTP      httpapi.Config   `mapstructure:"http"`
	Auth      auth.Config      `mapstructure:"auth"`
	Redis     cache.Config     `mapstructure:"redis"`
	Bucket    bucket.Config    `mapstructure:"bucket"`
	Dashboard dashboard.Config `mapstructure:"dashboard"`
}

// LoadConfig loads the configuration from a file and/or environment
// variables. Environment variables take precedence over config file values.
func LoadConfig(cfgFile string) (*Config, error) {
	viper.SetConfigType("toml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	bindEnvVars()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			// a missing file is fine, env vars can carry the whole config
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/config/marketplace-manager")
		viper.AddConfigPath("/etc/marketplace-manager")
		_ = viper.ReadInConfig()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	// Assemble the DSN from discrete MYSQL_* vars when it is not set
	// directly.
	if config.DB.DSN == "" {
		host := os.Getenv("MYSQL_HOST")
		port := os.Getenv("MYSQL_PORT")
		user := os.Getenv("MYSQL_USER")
		password := os.Getenv("MYSQL_PASSWORD")
		database := os.Getenv("MYSQL_DATABASE")

		if host != "" && user != "" && password != "" && database != "" {
			if port == "" {
				port = "3306"
			}
			config.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8&parseTime=true",
				user, password, host, port, database)
		}
	}

	return &config, nil
}

func bindEnvVars() {
	// MySQL
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	viper.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	viper.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	viper.BindEnv("http.port", "HTTP_PORT")
	viper.BindEnv("http.address", "HTTP_ADDRESS")
	viper.BindEnv("http.allowedOrigins", "HTTP_ALLOWED_ORIGINS")

	// Auth
	viper.BindEnv("auth.jwtSecret", "AUTH_JWT_SECRET")
	viper.BindEnv("auth.jwtttl", "AUTH_JWT_TTL")

	// Redis
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	// Bucket
	viper.BindEnv("bucket.s3AccessKey", "BUCKET_S3_ACCESS_KEY")
	viper.BindEnv("bucket.s3SecretAccessKey", "BUCKET_S3_SECRET_ACCESS_KEY")
	viper.BindEnv("bucket.s3Endpoint", "BUCKET_S3_ENDPOINT")
	viper.BindEnv("bucket.s3BucketName", "BUCKET_S3_BUCKET_NAME")
	viper.BindEnv("bucket.s3BucketLocation", "BUCKET_S3_BUCKET_LOCATION")
	viper.BindEnv("bucket.baseFolder", "BUCKET_BASE_FOLDER")

	// Dashboard
	viper.BindEnv("dashboard.currency", "DASHBOARD_CURRENCY")
	viper.BindEnv("dashboard.cacheTTL", "DASHBOARD_CACHE_TTL")
	viper.BindEnv("dashboard.topProductsLimit", "DASHBOARD_TOP_PRODUCTS_LIMIT")
	viper.BindEnv("dashboard.conversionPerPage", "DASHBOARD_CONVERSION_PER_PAGE")
}
