package config

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Env         string `mapstructure:"env"`
	AllowOrigin string `mapstructure:"allow_origin"`
}

// Development reports whether the server runs in development mode. Error
// responses include more detail in development (stack traces still go to the
// operational log only).
func (c ServerConfig) Development() bool {
	return c.Env != "production"
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type MongoDBConfig struct {
	Database string      `mapstructure:"database"`
	User     string      `mapstructure:"user"`
	Password SecretValue `mapstructure:"password"`
	Port     string      `mapstructure:"port"`
	Host     string      `mapstructure:"host"`
}

type KeyConfig struct {
	RsaPrivateKeyPem SecretValue `mapstructure:"rsa_private_key_pem"`
	TokenTTLMinutes  int         `mapstructure:"token_ttl_minutes"`
	CookieName       string      `mapstructure:"cookie_name"`
}

type AccountConfig struct {
	AdminName     string      `mapstructure:"admin_name"`
	AdminEmail    string      `mapstructure:"admin_email"`
	AdminPassword SecretValue `mapstructure:"admin_password"`
}

type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	MongoDB   MongoDBConfig   `mapstructure:"mongodb"`
	Key       KeyConfig       `mapstructure:"key"`
	Account   AccountConfig   `mapstructure:"account"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

func InitAppConfig(configName string, configPath string) (AppConfig, error) {
	var cfg AppConfig
	if configPath != "" {
		viper.AddConfigPath(configPath)
	}
	if configName == "" {
		configName = "shelter_config"
	}
	viper.AddConfigPath(GetAbsPath("config"))
	viper.SetConfigName(configName)
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("SHELTER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	err := viper.ReadInConfig()
	if err != nil {
		return cfg, err
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GetAbsPath returns the absolute path by joining the given paths with the project root directory
func GetAbsPath(paths ...string) string {
	_, filePath, _, _ := runtime.Caller(1)
	basePath := filepath.Dir(filePath)
	rootPath := filepath.Join(basePath, "..")
	return filepath.Join(rootPath, filepath.Join(paths...))
}
