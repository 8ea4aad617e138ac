package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Local    LocalConfig    `mapstructure:"local"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Demo     DemoConfig     `mapstructure:"demo"`
	Sync     SyncConfig     `mapstructure:"sync"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// DatabaseConfig selects the remote persistence path. An empty URI
// switches the whole app to the local file store.
type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// LocalConfig is the file store used in local mode, and for reminder
// settings in either mode.
type LocalConfig struct {
	Dir string `mapstructure:"dir"`
}

// S3Config points at the optional export archive. An empty bucket name
// disables archiving.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration. Expiration must be a
// duration string ("24h", "60m") so viper can unmarshal it directly.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// DemoConfig is the identity unauthenticated requests fall back to.
type DemoConfig struct {
	Owner string `mapstructure:"owner"`
}

// SyncConfig tunes the remote persistence path.
type SyncConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Nested keys map to env vars as server.address -> SERVER_ADDRESS.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "")
	viper.SetDefault("database.name", "shuttlestats")
	viper.SetDefault("local.dir", "data")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("demo.owner", "practice@gmail.com")
	viper.SetDefault("sync.timeout", "8s")

	err = viper.ReadInConfig()
	// Missing file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}
	return config, nil
}

// RemoteMode reports whether a document database is configured.
func (c Config) RemoteMode() bool { return c.Database.URI != "" }

// ArchiveEnabled reports whether the export archive is configured.
func (c Config) ArchiveEnabled() bool { return c.S3.BucketName != "" }
