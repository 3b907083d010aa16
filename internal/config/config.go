package config

import (
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App        App        `mapstructure:",squash"`
	Meta       Meta       `mapstructure:",squash"`
	Google     Google     `mapstructure:",squash"`
	BigQuery   BigQuery   `mapstructure:",squash"`
	MySQL      MySQL      `mapstructure:",squash"`
	Sync       Sync       `mapstructure:",squash"`
	Migrations Migrations `mapstructure:",squash"`

	// Comma-separated provider and storage names for one-shot runs.
	Providers string `mapstructure:"ad_providers"`
	Storages  string `mapstructure:"storages"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Meta struct {
	BaseURL     string `mapstructure:"meta_base_url"`
	Version     string `mapstructure:"meta_version"`
	URL         string `mapstructure:"-"`
	AccessToken string `mapstructure:"meta_access_token"`
	AppID       string `mapstructure:"meta_app_id"`
	AppSecret   string `mapstructure:"meta_app_secret"`
	AdAccountID string `mapstructure:"meta_ad_account_id"`
}

// AccountIDs splits META_AD_ACCOUNT_ID into individual ad-account ids. An
// empty result means the provider should discover the user's accounts.
func (m Meta) AccountIDs() []string {
	return SplitList(m.AdAccountID)
}

type Google struct {
	ConfigPath string `mapstructure:"googleads_config"`
	CustomerID string `mapstructure:"googleads_customer_id"`
	Endpoint   string `mapstructure:"googleads_endpoint"`
}

type BigQuery struct {
	ServiceAccountJSON string `mapstructure:"bg_service_account_json"`
	Dataset            string `mapstructure:"bq_dataset"`
	Table              string `mapstructure:"bq_table"`
	Location           string `mapstructure:"bq_location"`
}

type MySQL struct {
	Host     string `mapstructure:"mysql_host"`
	User     string `mapstructure:"mysql_user"`
	Password string `mapstructure:"mysql_password"`
	Database string `mapstructure:"mysql_database"`
	Table    string `mapstructure:"mysql_table"`
}

// DSN builds the go-sql-driver connection string for the configured database.
func (m MySQL) DSN() string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = m.Host
	cfg.User = m.User
	cfg.Passwd = m.Password
	cfg.DBName = m.Database
	cfg.ParseTime = true

	return cfg.FormatDSN()
}

type Sync struct {
	CronSchedule string `mapstructure:"pipeline_sync_cron"`
	LookbackDays int    `mapstructure:"pipeline_sync_lookback_days"`
	Enabled      bool   `mapstructure:"pipeline_sync_enabled"`
}

type Migrations struct {
	Dir string `mapstructure:"migrations_dir"`
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_ACCESS_TOKEN", "")
	viper.SetDefault("META_APP_ID", "")
	viper.SetDefault("META_APP_SECRET", "")
	viper.SetDefault("META_AD_ACCOUNT_ID", "")

	viper.SetDefault("GOOGLEADS_CONFIG", "")
	viper.SetDefault("GOOGLEADS_CUSTOMER_ID", "")
	viper.SetDefault("GOOGLEADS_ENDPOINT", "https://googleads.googleapis.com/v17")

	viper.SetDefault("BG_SERVICE_ACCOUNT_JSON", "")
	viper.SetDefault("BQ_DATASET", "")
	viper.SetDefault("BQ_TABLE", "")
	viper.SetDefault("BQ_LOCATION", "")

	viper.SetDefault("MYSQL_HOST", "localhost:3306")
	viper.SetDefault("MYSQL_USER", "")
	viper.SetDefault("MYSQL_PASSWORD", "")
	viper.SetDefault("MYSQL_DATABASE", "")
	viper.SetDefault("MYSQL_TABLE", "ads_data")

	viper.SetDefault("AD_PROVIDERS", "")
	viper.SetDefault("STORAGES", "csv")

	viper.SetDefault("PIPELINE_SYNC_CRON", "0 3 * * *")
	viper.SetDefault("PIPELINE_SYNC_LOOKBACK_DAYS", 1)
	viper.SetDefault("PIPELINE_SYNC_ENABLED", false)

	viper.SetDefault("MIGRATIONS_DIR", "migrations")
}

func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file loaded, relying on environment variables")
	}

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("viper could not read .env, using environment variables: ", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = config.Meta.BaseURL + "/" + config.Meta.Version

	return config, nil
}

// SplitList splits a comma-separated value, trimming whitespace and dropping
// empty entries.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")

	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items
}
