package config

import "errors"

// ErrInvalidConfig is returned for configuration values that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")
