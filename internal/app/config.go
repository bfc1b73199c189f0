package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	RequestTimeout  time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://127.0.0.1:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"users"`

	TokenSecret       string `envconfig:"TOKEN_SECRET" required:"true"`
	TokenExpirationHS int    `envconfig:"TOKEN_EXPIRATION_TIME_IN_HS" default:"2"`

	FirebaseSecret string `envconfig:"FIREBASE_SECRET" default:"{}"`

	MetricsQueue string `envconfig:"QUEUE" default:"service-metrics"`
	AMQPURL      string `envconfig:"CLOUDAMQP_URL" default:"amqp://127.0.0.1:5672"`

	SubscriptionServiceURL string `envconfig:"SUBSCRIPTION_SERVICE_URL" default:"http://127.0.0.1:3001"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.TokenSecret == "" {
		return nil, errors.New("token secret must be provided")
	}
	return &cfg, nil
}

// TokenTTL returns the token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpirationHS) * time.Hour
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
