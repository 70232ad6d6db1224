package quaero

import "errors"

var (
	// ErrProviderRequired is returned when an engine is built without an AI provider.
	ErrProviderRequired = errors.New("ai provider required")

	// ErrStoresRequired is returned when an engine is built without storage.
	ErrStoresRequired = errors.New("stores required")

	// ErrUnknownProvider is returned for a provider name with no adapter.
	ErrUnknownProvider = errors.New("unknown ai provider")
)
