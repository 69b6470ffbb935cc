package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// StorageConfig selects and configures the file storage backend.
// Driver is "local" (default) or "s3".
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	LocalRoot string `mapstructure:"local_root"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration. The secret is mandatory:
// LoadConfig fails when it is unset rather than falling back to a default.
// Expiry is explicit per role.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	ClientExpiration  time.Duration `mapstructure:"client_expiration"`
	TrainerExpiration time.Duration `mapstructure:"trainer_expiration"`
	AdminExpiration   time.Duration `mapstructure:"admin_expiration"`
}

// AdminConfig seeds the initial admin account and optionally enables the
// static service token accepted by the admin middleware. An empty
// StaticToken disables the bypass.
type AdminConfig struct {
	Email       string `mapstructure:"email"`
	Password    string `mapstructure:"password"`
	StaticToken string `mapstructure:"static_token"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// ErrMissingJWTSecret is returned when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("jwt.secret must be configured (no default is applied)")

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling: nested keys map to underscored env
	// names, e.g. jwt.client_expiration -> JWT_CLIENT_EXPIRATION.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "coaching_app")
	viper.SetDefault("storage.driver", "local")
	viper.SetDefault("storage.local_root", "uploads")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.client_expiration", "24h")
	viper.SetDefault("jwt.trainer_expiration", "24h")
	viper.SetDefault("jwt.admin_expiration", "12h")
	viper.SetDefault("cors.allow_origins", []string{"http://localhost:5173"})

	err = viper.ReadInConfig()
	// A missing config file is fine: defaults plus env vars may be enough.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// The signing secret has no fallback. Refusing to start beats running
	// with a well-known key.
	if config.JWT.Secret == "" {
		return config, ErrMissingJWTSecret
	}

	return config, nil
}
