package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// requiredFields lists, per environment, settings that must not be empty.
var requiredFields = map[Environment][]string{
	Development: {"server_port", "db_driver"},
	Test:        {"server_port", "db_driver"},
	CI:          {"server_port", "db_driver", "db_host", "db_password", "jwt_secret"},
	Production:  {"server_port", "db_driver", "db_host", "db_user", "db_password", "db_name", "jwt_secret"},
}

// ValidateConfig checks the configuration against the requirements of env.
func ValidateConfig(cfg *Config, env Environment) error {
	var errs ValidationErrors

	values := map[string]string{
		"server_port": cfg.ServerPort,
		"db_driver":   cfg.DBDriver,
		"db_host":     cfg.DBHost,
		"db_user":     cfg.DBUser,
		"db_password": cfg.DBPassword,
		"db_name":     cfg.DBName,
		"jwt_secret":  cfg.JWTSecret,
	}
	for _, field := range requiredFields[env] {
		if values[field] == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"})
		}
	}

	switch cfg.DBDriver {
	case "postgres":
	case "sqlite":
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{Field: "db_path", Message: "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{Field: "db_driver", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.StorageBackend {
	case "local":
		if cfg.MediaRoot == "" {
			errs = append(errs, ValidationError{Field: "media_root", Message: "is required for local storage"})
		}
	case "s3":
		if cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{Field: "s3_bucket_name", Message: "is required for s3 storage"})
		}
	default:
		errs = append(errs, ValidationError{Field: "storage_backend", Message: fmt.Sprintf("unsupported backend %q", cfg.StorageBackend)})
	}

	if env == Production && cfg.JWTSecret == DefaultJWTSecret {
		errs = append(errs, ValidationError{Field: "jwt_secret", Message: "must be changed in production"})
	}
	if cfg.TokenTTL < time.Minute {
		errs = append(errs, ValidationError{Field: "token_ttl", Message: "must be at least one minute"})
	}
	if cfg.PageSize < 1 || cfg.MaxPageSize < cfg.PageSize {
		errs = append(errs, ValidationError{Field: "page_size", Message: "must be positive and not exceed max_page_size"})
	}
	if cfg.RecipeCreationLimit < 1 || cfg.RecipeCreationWindow <= 0 {
		errs = append(errs, ValidationError{Field: "recipe_creation_limit", Message: "limit and window must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
