package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort       int    `mapstructure:"http_port"`
	LogLevel       string `mapstructure:"log_level"`
	DatabaseDriver string `mapstructure:"database_driver"` // "sqlite" or "mysql"
	DatabaseURL    string `mapstructure:"database_url"`    // file path for sqlite, DSN for mysql
	JwtSecret      string `mapstructure:"jwt_secret"`
	SessionHours   int    `mapstructure:"session_hours"`
	BcryptCost     int    `mapstructure:"bcrypt_cost"`
	// RegistrationOpen enables public self-registration via POST /new.
	// When false only administrators may create users.
	RegistrationOpen bool `mapstructure:"registration_open"`
	// RegistrationConfirm is a pass-through flag for sending confirmation
	// mail on registration; no mailer is wired here.
	RegistrationConfirm bool   `mapstructure:"registration_confirmation"`
	PostLoginRedirect   string `mapstructure:"post_login_redirect"`
	AdminTheme          string `mapstructure:"admin_theme"` // pass-through UI theme name
	SeedAdminPassword   string `mapstructure:"seed_admin_password"`
}

var AppConfig Config

func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable overrides
	viper.SetEnvPrefix("TODO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("http_port", 8080)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("database_driver", "sqlite")
	viper.SetDefault("database_url", "todo.db")
	viper.SetDefault("jwt_secret", "default-very-insecure-secret-key") // CHANGE THIS IN PRODUCTION
	viper.SetDefault("session_hours", 24)
	viper.SetDefault("bcrypt_cost", 10)
	viper.SetDefault("registration_open", true)
	viper.SetDefault("registration_confirmation", false)
	viper.SetDefault("post_login_redirect", "/todos")
	viper.SetDefault("admin_theme", "cerulean")
	viper.SetDefault("seed_admin_password", "adminpassword")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults and environment variables.")
		} else {
			panic(fmt.Errorf("fatal error reading config file: %w", err))
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		panic(fmt.Errorf("unable to decode config into struct: %w", err))
	}
}
