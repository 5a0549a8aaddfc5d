// Package config resolves the OpenAlex client settings. Values come from the
// global config file, then the environment, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Defaults for settings that are not configured anywhere.
const (
	DefaultPerPage            = 50
	DefaultMaxRetries         = 0
	DefaultRetryBackoffFactor = 0.1
)

// DefaultRetryHTTPCodes are the status codes retried by default.
var DefaultRetryHTTPCodes = []int{429, 500, 503}

// ErrInvalidConfig is returned when a resolved setting is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings of the OpenAlex client.
type Config struct {
	Email              string  `yaml:"email,omitempty" env:"OPENALEX_EMAIL" validate:"omitempty,email"`
	APIKey             string  `yaml:"api_key,omitempty" env:"OPENALEX_API_KEY"`
	PerPage            int     `yaml:"per_page,omitempty" env:"OPENALEX_PER_PAGE" validate:"min=1,max=200"`
	MaxRetries         int     `yaml:"max_retries,omitempty" env:"OPENALEX_MAX_RETRIES" validate:"min=0"`
	RetryBackoffFactor float64 `yaml:"retry_backoff_factor,omitempty" env:"OPENALEX_RETRY_BACKOFF_FACTOR" validate:"gte=0"`
	RetryHTTPCodes     []int   `yaml:"retry_http_codes,omitempty" env:"OPENALEX_RETRY_HTTP_CODES" validate:"dive,min=100,max=599"`
}

// Defaults returns a config with every setting at its default.
func Defaults() *Config {
	return &Config{
		PerPage:            DefaultPerPage,
		MaxRetries:         DefaultMaxRetries,
		RetryBackoffFactor: DefaultRetryBackoffFactor,
		RetryHTTPCodes:     append([]int(nil), DefaultRetryHTTPCodes...),
	}
}

// Load returns the defaults overlaid with the global config file and the
// OPENALEX_* environment variables. Flags are applied by the caller before
// calling Validate.
func Load() (*Config, error) {
	cfg := Defaults()

	file, err := LoadFile()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	file.apply(cfg)

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing environment: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config file names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks that every setting is within range.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, formatFieldError(e))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
