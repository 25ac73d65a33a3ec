// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nwcapparel/catalog-sync/pkg/caspio"
)

// Config holds the full application configuration.
type Config struct {
	Caspio    CaspioConfig    `yaml:"caspio" mapstructure:"caspio"`
	Tables    TablesConfig    `yaml:"tables" mapstructure:"tables"`
	Mapping   MappingConfig   `yaml:"mapping" mapstructure:"mapping"`
	Rosters   RostersConfig   `yaml:"rosters" mapstructure:"rosters"`
	Merge     MergeConfig     `yaml:"merge" mapstructure:"merge"`
	Writeback WritebackConfig `yaml:"writeback" mapstructure:"writeback"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CaspioConfig holds record-store credentials and client tuning.
type CaspioConfig struct {
	AccountID    string  `yaml:"account_id" mapstructure:"account_id"`
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string  `yaml:"client_secret" mapstructure:"client_secret"`
	PageSize     int     `yaml:"page_size" mapstructure:"page_size"`
	MaxPages     int     `yaml:"max_pages" mapstructure:"max_pages"`
	RPS          float64 `yaml:"rps" mapstructure:"rps"`
}

// TablesConfig names the record-store tables; all are overridable for
// sandbox accounts.
type TablesConfig struct {
	DesignList    string `yaml:"design_list" mapstructure:"design_list"`
	ArtRequests   string `yaml:"art_requests" mapstructure:"art_requests"`
	QuoteItems    string `yaml:"quote_items" mapstructure:"quote_items"`
	LegacyDesigns string `yaml:"legacy_designs" mapstructure:"legacy_designs"`
	Customers     string `yaml:"customers" mapstructure:"customers"`
	Unified       string `yaml:"unified" mapstructure:"unified"`
	Orders        string `yaml:"orders" mapstructure:"orders"`
}

// MappingConfig locates the authoritative customer mapping file.
type MappingConfig struct {
	Location string `yaml:"location" mapstructure:"location"` // local path or ftp:// URL
}

// RostersConfig locates the sales rep roster workbook.
type RostersConfig struct {
	Workbook string `yaml:"workbook" mapstructure:"workbook"`
}

// MergeConfig points at an optional chain-config override.
type MergeConfig struct {
	ChainsPath string `yaml:"chains_path" mapstructure:"chains_path"`
}

// WritebackConfig tunes the write pool.
type WritebackConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	PauseMS     int `yaml:"pause_ms" mapstructure:"pause_ms"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the status API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CATSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("caspio.page_size", 1000)
	v.SetDefault("caspio.max_pages", 200)
	v.SetDefault("caspio.rps", 10)
	v.SetDefault("tables.design_list", "NWCA_Design_List")
	v.SetDefault("tables.art_requests", "ArtRequests")
	v.SetDefault("tables.quote_items", "Quote_Items")
	v.SetDefault("tables.legacy_designs", "Legacy_Designs")
	v.SetDefault("tables.customers", "Customers")
	v.SetDefault("tables.unified", "Unified_Design_Catalog")
	v.SetDefault("tables.orders", "ORDER_ODBC")
	v.SetDefault("writeback.concurrency", 5)
	v.SetDefault("writeback.pause_ms", 500)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "catalog-sync.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// CaspioOptions translates the config into client options. Credential
// validation happens in the client constructor, before any fetch.
func (c *Config) CaspioOptions() caspio.Options {
	return caspio.Options{
		AccountID:    c.Caspio.AccountID,
		ClientID:     c.Caspio.ClientID,
		ClientSecret: c.Caspio.ClientSecret,
		PageSize:     c.Caspio.PageSize,
		MaxPages:     c.Caspio.MaxPages,
		RPS:          c.Caspio.RPS,
	}
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
