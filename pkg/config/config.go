package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Platform   string           `mapstructure:"platform"`
	MimeTypes  string           `mapstructure:"mime_types"`
	Locale     string           `mapstructure:"locale"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

type AnalysisConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

type ExtractionConfig struct {
	Disabled []string `mapstructure:"disabled"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	DownloadDir string `mapstructure:"download_dir"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

const dateLayout = "2006-01-02"

// Window parses the analysis bounds.
func (a AnalysisConfig) Window() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, a.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("analysis.start: %w", err)
	}
	end, err = time.Parse(dateLayout, a.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("analysis.end: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("analysis window %s..%s is empty", a.Start, a.End)
	}
	return start, end, nil
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

// LoadConfig reads path if it exists; defaults and environment variables
// cover everything else.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("platform", "TikTok")
	v.SetDefault("mime_types", "application/zip, text/plain, application/json")
	v.SetDefault("locale", "en")
	v.SetDefault("analysis.start", "2021-01-01")
	v.SetDefault("analysis.end", "2025-01-01")
	v.SetDefault("extraction.disabled", []string{})
	v.SetDefault("telegram.download_dir", os.TempDir())
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "donations")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", true)

	// Enable environment variable support
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if _, _, err := config.Analysis.Window(); err != nil {
		return nil, err
	}

	return &config, nil
}
