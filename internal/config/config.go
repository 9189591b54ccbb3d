package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/quote-sync/pkg/gdrive"
)

// Config holds the full application configuration.
type Config struct {
	Drive  DriveConfig  `yaml:"drive" mapstructure:"drive"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Sync   SyncConfig   `yaml:"sync" mapstructure:"sync"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DriveConfig holds Google Drive credentials and the root folder aliases.
type DriveConfig struct {
	CredentialsFile string   `yaml:"credentials_file" mapstructure:"credentials_file"`
	CredentialsJSON string   `yaml:"credentials_json" mapstructure:"credentials_json"`
	ClientID        string   `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret    string   `yaml:"client_secret" mapstructure:"client_secret"`
	RefreshToken    string   `yaml:"refresh_token" mapstructure:"refresh_token"`
	AccessToken     string   `yaml:"access_token" mapstructure:"access_token"`
	Endpoint        string   `yaml:"endpoint" mapstructure:"endpoint"`
	RootFolders     []string `yaml:"root_folders" mapstructure:"root_folders"`
	TimeoutSecs     int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RetryAttempts   int      `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// Auth converts the credential fields for gdrive.NewTokenSource.
func (d DriveConfig) Auth() gdrive.AuthConfig {
	return gdrive.AuthConfig{
		CredentialsFile: d.CredentialsFile,
		CredentialsJSON: d.CredentialsJSON,
		ClientID:        d.ClientID,
		ClientSecret:    d.ClientSecret,
		RefreshToken:    d.RefreshToken,
		AccessToken:     d.AccessToken,
	}
}

// HasCredentials reports whether any credential source is configured.
func (d DriveConfig) HasCredentials() bool {
	return d.CredentialsFile != "" || d.CredentialsJSON != "" || d.RefreshToken != "" || d.AccessToken != ""
}

// ScanConfig configures the folder scan.
type ScanConfig struct {
	CacheTTLSecs int    `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	TempDir      string `yaml:"temp_dir" mapstructure:"temp_dir"`
	SheetName    string `yaml:"sheet_name" mapstructure:"sheet_name"`
}

// CacheTTL returns the scan cache TTL.
func (s ScanConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSecs) * time.Second
}

// SyncConfig configures the one-at-a-time sync loop.
type SyncConfig struct {
	DelayMs       int  `yaml:"delay_ms" mapstructure:"delay_ms"`
	Limit         int  `yaml:"limit" mapstructure:"limit"`
	SkipUnchanged bool `yaml:"skip_unchanged" mapstructure:"skip_unchanged"`
}

// Delay returns the spacing between documents.
func (s SyncConfig) Delay() time.Duration {
	return time.Duration(s.DelayMs) * time.Millisecond
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("QUOTESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one so environment overrides reach Unmarshal.
	v.SetDefault("drive.credentials_file", "")
	v.SetDefault("drive.credentials_json", "")
	v.SetDefault("drive.client_id", "")
	v.SetDefault("drive.client_secret", "")
	v.SetDefault("drive.refresh_token", "")
	v.SetDefault("drive.access_token", "")
	v.SetDefault("drive.endpoint", "")
	v.SetDefault("drive.root_folders", []string{"Preventivi", "PREVENTIVI", "preventivi"})
	v.SetDefault("drive.timeout_secs", 60)
	v.SetDefault("drive.retry_attempts", 3)
	v.SetDefault("scan.cache_ttl_secs", 300)
	v.SetDefault("scan.temp_dir", os.TempDir())
	v.SetDefault("scan.sheet_name", "")
	v.SetDefault("sync.delay_ms", 1500)
	v.SetDefault("sync.limit", 0)
	v.SetDefault("sync.skip_unchanged", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "quotes.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on: "scan", "analyze",
// "sync", "serve" or "store".
func (c *Config) Validate(mode string) error {
	var errs []string
	needDrive := mode == "scan" || mode == "analyze" || mode == "sync" || mode == "serve"
	needStore := mode == "sync" || mode == "serve" || mode == "store"

	if needDrive {
		if !c.Drive.HasCredentials() {
			errs = append(errs, "drive credentials are required (credentials_file, refresh_token or access_token)")
		}
		if c.Drive.RefreshToken != "" && (c.Drive.ClientID == "" || c.Drive.ClientSecret == "") {
			errs = append(errs, "drive.client_id and drive.client_secret are required with drive.refresh_token")
		}
		if len(c.Drive.RootFolders) == 0 {
			errs = append(errs, "drive.root_folders must name at least one folder")
		}
	}
	if needStore {
		switch c.Store.Driver {
		case "sqlite", "postgres":
		default:
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}
	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if mode == "sync" && c.Sync.DelayMs < 0 {
		errs = append(errs, "sync.delay_ms must not be negative")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
