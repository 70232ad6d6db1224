package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/quaero/core"
)

var (
	// ErrDeviceResource marks a failure caused by exhausted accelerator
	// resources, such as device memory. Backends may wrap it directly.
	ErrDeviceResource = errors.New("device resource exhausted")

	ErrUnknownModel          = errors.New("unknown embedding model")
	ErrInvalidCapabilities   = errors.New("invalid model capabilities")
	ErrBackendLoaderRequired = errors.New("backend loader is required")
	ErrRegistryRequired      = errors.New("model registry is required")

	ErrDimensionMismatch = fmt.Errorf("%w: vector dimension mismatch", core.ErrEmbedding)
	ErrCountMismatch     = fmt.Errorf("%w: vector count does not match input count", core.ErrEmbedding)
)

// Message fragments emitted by accelerator runtimes when they run out of
// memory or cannot place a model on the device.
var deviceResourceMarkers = []string{
	"out of memory",
	"cuda",
	"cudnn",
	"cublas",
	"insufficient memory",
	"device lost",
	"resource exhausted",
}

// IsDeviceResourceError reports whether err signals an accelerator resource
// failure rather than an ordinary request failure.
func IsDeviceResourceError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDeviceResource) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range deviceResourceMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// WarmupError classifies a failed warm-up request against the accelerated
// embedding host. With a distinct fallback host configured the failure counts
// as a device resource error, so the gateway starts on the fallback device.
func WarmupError(config *Config, err error) error {
	if config.FallbackEmbeddingHost != "" && config.FallbackEmbeddingHost != config.EmbeddingHost {
		return fmt.Errorf("%w: warming up %s: %w", ErrDeviceResource, config.EmbeddingHost, err)
	}
	return fmt.Errorf("warming up %s: %w", config.EmbeddingHost, err)
}
