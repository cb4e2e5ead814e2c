/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the account-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort            string `mapstructure:"SERVER_PORT"`
	DatabaseURL           string `mapstructure:"DATABASE_URL"`
	RedisURL              string `mapstructure:"REDIS_URL"`
	RabbitMQURL           string `mapstructure:"RABBITMQ_URL"`
	InternalAPIKey        string `mapstructure:"INTERNAL_API_KEY"`
	MaxAccountsPerUser    int    `mapstructure:"MAX_ACCOUNTS_PER_USER"`
	LockWaitTimeoutMillis int    `mapstructure:"LOCK_WAIT_TIMEOUT_MS"`
	LockHoldTimeoutSecs   int    `mapstructure:"LOCK_HOLD_TIMEOUT_SECONDS"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MAX_ACCOUNTS_PER_USER", 10)
	viper.SetDefault("LOCK_WAIT_TIMEOUT_MS", 1000)
	viper.SetDefault("LOCK_HOLD_TIMEOUT_SECONDS", 15)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("INTERNAL_API_KEY", "INTERNAL_API_KEY", "ACCOUNT_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("MAX_ACCOUNTS_PER_USER")
	_ = viper.BindEnv("LOCK_WAIT_TIMEOUT_MS")
	_ = viper.BindEnv("LOCK_HOLD_TIMEOUT_SECONDS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	// Unmarshal the configuration into the Config struct.
	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	if strings.TrimSpace(config.InternalAPIKey) == "" {
		config.InternalAPIKey = strings.TrimSpace(os.Getenv("ACCOUNT_SERVICE_INTERNAL_API_KEY"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)

	if config.MaxAccountsPerUser <= 0 {
		log.Printf("level=warn component=config msg=\"invalid account quota; using default\" value=%d", config.MaxAccountsPerUser)
		config.MaxAccountsPerUser = 10
	}
	if config.LockWaitTimeoutMillis <= 0 {
		config.LockWaitTimeoutMillis = 1000
	}
	if config.LockHoldTimeoutSecs <= 0 {
		config.LockHoldTimeoutSecs = 15
	}

	return
}
