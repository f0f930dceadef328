package config

import (
	"errors"
)

var (
	// ErrInvalidConfig wraps every Validate failure and bad layout setting.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading the YAML file or the POS_ env vars.
	ErrLoadConfig = errors.New("load config failed")
)
