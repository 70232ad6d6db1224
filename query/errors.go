package query

import "errors"

var (
	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrMemoryRequired is returned when a conversation store is not provided.
	ErrMemoryRequired = errors.New("conversation memory required")

	// ErrInvalidTemperature is returned for a temperature outside [0, 2].
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 2")
)
