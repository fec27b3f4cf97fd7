package config

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Port               string           `mapstructure:"PORT" validate:"required"`
	InternalAuthHeader string           `mapstructure:"INTERNAL_AUTH_HEADER" validate:"required"`
	Db                 DbConfig         `mapstructure:",squash"`
	Jwt                JwtConfig        `mapstructure:",squash"`
	Nats               NatsConfig       `mapstructure:",squash"`
	Redis              RedisConfig      `mapstructure:",squash"`
	Scheduler          SchedulerConfig  `mapstructure:",squash"`
	Automation         AutomationConfig `mapstructure:",squash"`
}

type DbConfig struct {
	Host     string `mapstructure:"DB_HOST" validate:"required"`
	Port     string `mapstructure:"DB_PORT" validate:"required"`
	Username string `mapstructure:"DB_USERNAME" validate:"required"`
	Password string `mapstructure:"DB_PASSWORD" validate:"required"`
	DbName   string `mapstructure:"DB_DBNAME" validate:"required"`
	SSLMode  string `mapstructure:"DB_SSLMODE"`
	// AutoMigrate applies the embedded schema on startup.
	AutoMigrate bool `mapstructure:"DB_AUTO_MIGRATE"`
}

type JwtConfig struct {
	SecretKey string `mapstructure:"JWT_SECRETKEY" validate:"required"`
	AdminRole string `mapstructure:"JWT_ADMIN_ROLE" validate:"required"`
}

type NatsConfig struct {
	Url        string `mapstructure:"NATS_URL" validate:"required"`
	StreamName string `mapstructure:"NATS_STREAM_NAME" validate:"required"`
}

// RedisConfig is optional; without an address jobs run without a
// cross-process lock.
type RedisConfig struct {
	Address  string `mapstructure:"REDIS_ADDRESS"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	JobTimeout             time.Duration `mapstructure:"JOB_TIMEOUT" validate:"gte=0"`
	RetryMaxAttempts       int           `mapstructure:"JOB_RETRY_MAX_ATTEMPTS" validate:"gte=1"`
	RetryBackoff           time.Duration `mapstructure:"JOB_RETRY_BACKOFF" validate:"gte=0"`
	RetryMaxBackoff        time.Duration `mapstructure:"JOB_RETRY_MAX_BACKOFF" validate:"gte=0"`
	LockTTL                time.Duration `mapstructure:"JOB_LOCK_TTL" validate:"gte=0"`
	VelocityInterval       time.Duration `mapstructure:"VELOCITY_INTERVAL" validate:"gte=0"`
	RecommendationInterval time.Duration `mapstructure:"RECOMMENDATION_INTERVAL" validate:"gte=0"`
	ReorderInterval        time.Duration `mapstructure:"REORDER_INTERVAL" validate:"gte=0"`
	DeadStockInterval      time.Duration `mapstructure:"DEAD_STOCK_INTERVAL" validate:"gte=0"`
}

// AutomationConfig holds the forecasting and disposition constants. The
// defaults reproduce the reference numbers exactly.
type AutomationConfig struct {
	ServiceLevel           float64 `mapstructure:"AUTOMATION_SERVICE_LEVEL" validate:"gt=0,lt=1"`
	ReorderCost            float64 `mapstructure:"AUTOMATION_REORDER_COST" validate:"gte=0"`
	HoldingCostPercent     float64 `mapstructure:"AUTOMATION_HOLDING_COST_PERCENT" validate:"gte=0"`
	CostRatio              float64 `mapstructure:"AUTOMATION_COST_RATIO" validate:"gt=0,lte=1"`
	FallbackOrderQuantity  int64   `mapstructure:"AUTOMATION_FALLBACK_ORDER_QUANTITY" validate:"gt=0"`
	ReorderPointStockRatio float64 `mapstructure:"AUTOMATION_REORDER_POINT_STOCK_RATIO" validate:"gte=0"`
	LookbackDays           int64   `mapstructure:"AUTOMATION_LOOKBACK_DAYS" validate:"gt=0"`
	MinDataPoints          int64   `mapstructure:"AUTOMATION_MIN_DATA_POINTS" validate:"gt=0"`
	DefaultConfidence      float64 `mapstructure:"AUTOMATION_DEFAULT_CONFIDENCE" validate:"gt=0,lte=1"`
	SmoothingAlpha         float64 `mapstructure:"AUTOMATION_SMOOTHING_ALPHA" validate:"gte=0,lte=1"`
	DefaultLeadTimeDays    int64   `mapstructure:"AUTOMATION_DEFAULT_LEAD_TIME_DAYS" validate:"gt=0"`
	DeadStockDays          int64   `mapstructure:"AUTOMATION_DEAD_STOCK_DAYS" validate:"gt=0"`
	ClearanceMinDays       int64   `mapstructure:"AUTOMATION_CLEARANCE_MIN_DAYS" validate:"gte=0"`
	ClearanceMinStock      int64   `mapstructure:"AUTOMATION_CLEARANCE_MIN_STOCK" validate:"gte=0"`
	DiscountFactor         float64 `mapstructure:"AUTOMATION_DISCOUNT_FACTOR" validate:"gt=0,lte=1"`
	ClearanceFactor        float64 `mapstructure:"AUTOMATION_CLEARANCE_FACTOR" validate:"gt=0,lte=1"`
}

var defaults = map[string]any{
	"PORT":            "8080",
	"DB_SSLMODE":      "disable",
	"DB_AUTO_MIGRATE": true,
	"JWT_ADMIN_ROLE":  "ADMIN",

	"NATS_STREAM_NAME": "inventory",

	"JOB_TIMEOUT":             30 * time.Minute,
	"JOB_RETRY_MAX_ATTEMPTS":  1,
	"JOB_RETRY_BACKOFF":       5 * time.Second,
	"JOB_RETRY_MAX_BACKOFF":   time.Minute,
	"JOB_LOCK_TTL":            45 * time.Minute,
	"VELOCITY_INTERVAL":       24 * time.Hour,
	"RECOMMENDATION_INTERVAL": 24 * time.Hour,
	"REORDER_INTERVAL":        time.Hour,
	"DEAD_STOCK_INTERVAL":     24 * time.Hour,

	"AUTOMATION_SERVICE_LEVEL":             0.95,
	"AUTOMATION_REORDER_COST":              50.0,
	"AUTOMATION_HOLDING_COST_PERCENT":      0.25,
	"AUTOMATION_COST_RATIO":                0.4,
	"AUTOMATION_FALLBACK_ORDER_QUANTITY":   100,
	"AUTOMATION_REORDER_POINT_STOCK_RATIO": 0.3,
	"AUTOMATION_LOOKBACK_DAYS":             180,
	"AUTOMATION_MIN_DATA_POINTS":           15,
	"AUTOMATION_DEFAULT_CONFIDENCE":        0.95,
	"AUTOMATION_SMOOTHING_ALPHA":           0.3,
	"AUTOMATION_DEFAULT_LEAD_TIME_DAYS":    7,
	"AUTOMATION_DEAD_STOCK_DAYS":           90,
	"AUTOMATION_CLEARANCE_MIN_DAYS":        90,
	"AUTOMATION_CLEARANCE_MIN_STOCK":       10,
	"AUTOMATION_DISCOUNT_FACTOR":           0.7,
	"AUTOMATION_CLEARANCE_FACTOR":          0.3,
}

var envVars = []string{
	"PORT",
	"INTERNAL_AUTH_HEADER",
	"DB_HOST",
	"DB_PORT",
	"DB_USERNAME",
	"DB_PASSWORD",
	"DB_DBNAME",
	"DB_SSLMODE",
	"JWT_SECRETKEY",
	"JWT_ADMIN_ROLE",
	"NATS_URL",
	"NATS_STREAM_NAME",
	"REDIS_ADDRESS",
	"REDIS_PASSWORD",
	"REDIS_DB",
}

// DefaultAutomation returns the automation constants with their default values.
func DefaultAutomation() AutomationConfig {
	return AutomationConfig{
		ServiceLevel:           0.95,
		ReorderCost:            50,
		HoldingCostPercent:     0.25,
		CostRatio:              0.4,
		FallbackOrderQuantity:  100,
		ReorderPointStockRatio: 0.3,
		LookbackDays:           180,
		MinDataPoints:          15,
		DefaultConfidence:      0.95,
		SmoothingAlpha:         0.3,
		DefaultLeadTimeDays:    7,
		DeadStockDays:          90,
		ClearanceMinDays:       90,
		ClearanceMinStock:      10,
		DiscountFactor:         0.7,
		ClearanceFactor:        0.3,
	}
}

func InitConfig(ctx context.Context) (*Config, error) {
	var cfg Config

	// Reset viper to avoid any previous configuration
	viper.Reset()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigType("env")

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	_, err := os.Stat(envFile)
	if !os.IsNotExist(err) {
		viper.SetConfigFile(envFile)

		if err := viper.ReadInConfig(); err != nil {
			slog.WarnContext(ctx, "[InitConfig] ReadInConfig warning, continuing with env vars only", "error", err)
		} else {
			slog.InfoContext(ctx, "[InitConfig] Successfully loaded config file", "file", envFile)
		}
	} else {
		slog.InfoContext(ctx, "[InitConfig] No config file found, using environment variables")
	}

	viper.AutomaticEnv()

	// Defaults double as env bindings for every key that has one.
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	for _, key := range envVars {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.ErrorContext(ctx, "[InitConfig] Unmarshal", "failed bind config", err)
		return nil, err
	}

	slog.InfoContext(ctx, "[InitConfig] Configuration after binding",
		"PORT", cfg.Port,
		"DB_HOST", cfg.Db.Host,
		"DB_PORT", cfg.Db.Port,
		"DB_USERNAME", cfg.Db.Username,
		"DB_DBNAME", cfg.Db.DbName,
		"DB_SSLMODE", cfg.Db.SSLMode,
		"NATS_URL", cfg.Nats.Url,
		"REDIS_ADDRESS", cfg.Redis.Address,
		"JOB_TIMEOUT", cfg.Scheduler.JobTimeout,
		"JOB_RETRY_MAX_ATTEMPTS", cfg.Scheduler.RetryMaxAttempts)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if ok {
			for _, validationErr := range validationErrs {
				slog.ErrorContext(ctx, "[InitConfig] Validation error",
					"field", validationErr.Field(),
					"namespace", validationErr.Namespace(),
					"tag", validationErr.Tag(),
					"value", validationErr.Value())
			}
		} else {
			slog.ErrorContext(ctx, "[InitConfig] Validation", "error", err)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "[InitConfig] Config loaded successfully")
	return &cfg, nil
}
