package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"parlor"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret         string `envconfig:"JWT_SECRET"`
	JWTExpireMinutes  int    `envconfig:"JWT_EXPIRE_MINUTES" default:"120"`
	RefreshExpireMins int    `envconfig:"JWT_REFRESH_EXPIRE_MINUTES" default:"10080"`

	WechatAppID     string `envconfig:"WECHAT_APP_ID"`
	WechatAppSecret string `envconfig:"WECHAT_APP_SECRET"`
	WechatMchID     string `envconfig:"WECHAT_MCH_ID"`
	WechatMchKey    string `envconfig:"WECHAT_MCH_KEY"`
	WechatAPIBase   string `envconfig:"WECHAT_API_BASE" default:"https://api.weixin.qq.com"`
	WechatCloudEnv  string `envconfig:"WECHAT_CLOUD_ENV_ID"`
	WechatService   string `envconfig:"WECHAT_SERVICE_NAME" default:"parlor-api"`
	CallbackURL     string `envconfig:"PAYMENT_CALLBACK_URL" default:"http://localhost:8080/api/v1/payment/callback"`

	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	// Secrets have no usable defaults; refuse to start without them.
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.WechatAppID == "" {
		return nil, fmt.Errorf("WECHAT_APP_ID is required")
	}
	if cfg.WechatAppSecret == "" {
		return nil, fmt.Errorf("WECHAT_APP_SECRET is required")
	}
	if cfg.WechatMchID == "" {
		return nil, fmt.Errorf("WECHAT_MCH_ID is required")
	}
	if cfg.WechatMchKey == "" {
		return nil, fmt.Errorf("WECHAT_MCH_KEY is required")
	}

	return &cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
