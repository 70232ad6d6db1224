package chunker

import (
	"errors"
	"fmt"

	"github.com/poiesic/quaero/core"
)

var (
	// ErrInvalidChunkSize is returned when chunkSize is not positive.
	ErrInvalidChunkSize = fmt.Errorf("%w: chunk size must be positive", core.ErrChunking)

	// ErrInvalidOverlap is returned when overlap is negative or not smaller than chunkSize.
	ErrInvalidOverlap = fmt.Errorf("%w: overlap must be in [0, chunkSize)", core.ErrChunking)

	// ErrNoSeparators is returned when a Splitter is configured without separators.
	ErrNoSeparators = errors.New("at least one separator required")
)
