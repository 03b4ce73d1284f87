package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Типы хранилищ
const (
	ProviderCSV          = "csv"
	ProviderGoogleSheets = "google_sheets"
	ProviderSQLite       = "sqlite"
	ProviderPostgres     = "postgres"
)

const (
	defaultConfigPath    = "sync_config.yaml"
	defaultEnv           = EnvLocal
	defaultLogLevel      = "info"
	defaultServerAddress = "localhost:8080"
	defaultStatsPath     = "out/sync_stats.json"
	defaultExportDir     = "out"
	defaultCSVPath       = "out/telegram_data.csv"
	defaultEncoding      = "utf-8"
	defaultSheetName     = "Sheet1"
	defaultTable         = "telegram_data"
	defaultBackupKeep    = 3
	defaultMessageLimit  = 20
	defaultMessageDelay  = 2 * time.Second
	defaultGroupsDelay   = 3 * time.Second
)

var (
	ErrNoProviders     = errors.New("no providers configured")
	ErrUnknownProvider = errors.New("unknown provider type")
	ErrInvalidProvider = errors.New("invalid provider config")
)

// identifier допустимое имя таблицы/листа для SQL-хранилищ.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	Env       string           `mapstructure:"app_env"`
	LogLevel  string           `mapstructure:"log_level"`
	StatsPath string           `mapstructure:"stats_path"`
	ExportDir string           `mapstructure:"export_dir"`
	Server    Server           `mapstructure:"server"`
	Loader    Loader           `mapstructure:"loader"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

type Server struct {
	Address string `mapstructure:"address"`
}

// Loader настройки загрузчиков сообщений и общих групп
type Loader struct {
	MessageLimit int           `mapstructure:"message_limit"`
	MessageDelay time.Duration `mapstructure:"message_delay"`
	GroupsDelay  time.Duration `mapstructure:"groups_delay"`
	MaxRows      int           `mapstructure:"max_rows"`
}

// ProviderConfig настройки одного хранилища.
type ProviderConfig struct {
	Name          string `mapstructure:"name"`
	Type          string `mapstructure:"type"`
	BackupEnabled *bool  `mapstructure:"backup_enabled"`
	BackupKeep    int    `mapstructure:"backup_keep"`

	// csv
	CSVPath  string `mapstructure:"csv_path"`
	Encoding string `mapstructure:"encoding"`

	// google_sheets
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	SheetName       string `mapstructure:"sheet_name"`
	CredentialsFile string `mapstructure:"credentials_file"`

	// sqlite, postgres
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// Backup сообщает, включены ли снапшоты перед записью (по умолчанию да).
func (p ProviderConfig) Backup() bool {
	return p.BackupEnabled == nil || *p.BackupEnabled
}

// Load читает .env, файл конфигурации и переменные окружения (TG_SYNC_*).
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Ошибка загрузки .env файла: %v", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("tg_sync")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("stats_path", defaultStatsPath)
	v.SetDefault("export_dir", defaultExportDir)
	v.SetDefault("server.address", defaultServerAddress)
	v.SetDefault("loader.message_limit", defaultMessageLimit)
	v.SetDefault("loader.message_delay", defaultMessageDelay)
	v.SetDefault("loader.groups_delay", defaultGroupsDelay)
	v.SetDefault("loader.max_rows", 0)

	// APP_ENV и LOG_LEVEL без префикса, как в остальных наших сервисах
	_ = v.BindEnv("app_env", "APP_ENV", "TG_SYNC_APP_ENV")
	_ = v.BindEnv("log_level", "LOG_LEVEL", "TG_SYNC_LOG_LEVEL")

	if path == "" {
		path = defaultConfigPath
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	for i := range cfg.Providers {
		cfg.Providers[i].applyDefaults()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (p *ProviderConfig) applyDefaults() {
	if p.Name == "" {
		p.Name = p.Type
	}
	if p.BackupKeep == 0 {
		p.BackupKeep = defaultBackupKeep
	}
	switch p.Type {
	case ProviderCSV:
		if p.CSVPath == "" {
			p.CSVPath = defaultCSVPath
		}
		if p.Encoding == "" {
			p.Encoding = defaultEncoding
		}
	case ProviderGoogleSheets:
		if p.SheetName == "" {
			p.SheetName = defaultSheetName
		}
	case ProviderSQLite, ProviderPostgres:
		if p.Table == "" {
			p.Table = defaultTable
		}
	}
}

func (c *Config) validate() error {
	if len(c.Providers) == 0 {
		return ErrNoProviders
	}
	for _, p := range c.Providers {
		if err := p.validate(); err != nil {
			return err
		}
	}
	if c.Loader.MessageLimit <= 0 {
		return fmt.Errorf("loader.message_limit must be positive, got %d", c.Loader.MessageLimit)
	}
	return nil
}

func (p ProviderConfig) validate() error {
	if p.BackupKeep < 0 {
		return fmt.Errorf("%w: %s: backup_keep must not be negative", ErrInvalidProvider, p.Name)
	}

	switch p.Type {
	case ProviderCSV:
		return nil
	case ProviderGoogleSheets:
		if p.SpreadsheetID == "" {
			return fmt.Errorf("%w: %s: spreadsheet_id is required", ErrInvalidProvider, p.Name)
		}
		if p.CredentialsFile == "" {
			return fmt.Errorf("%w: %s: credentials_file is required", ErrInvalidProvider, p.Name)
		}
		return nil
	case ProviderSQLite, ProviderPostgres:
		if p.DSN == "" {
			return fmt.Errorf("%w: %s: dsn is required", ErrInvalidProvider, p.Name)
		}
		if !identifier.MatchString(p.Table) {
			return fmt.Errorf("%w: %s: bad table name %q", ErrInvalidProvider, p.Name, p.Table)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, p.Type)
	}
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}
