// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/quaero/core"
)

// Gateway is the single embedding entry point. It owns the loaded backend,
// tracks which device it runs on, and moves between the accelerated and
// fallback devices:
//
//   - A device-resource failure on the accelerated device switches to the
//     fallback device and the failed batch is retried there once.
//   - After RetryInterval on the fallback device, the next call tries to
//     reload on the accelerated device. If that fails, the wait restarts.
//
// All vectors returned are unit length and have the registered dimension.
// Gateway is safe for concurrent use.
type Gateway struct {
	loader        BackendLoader
	model         string
	caps          ModelCapabilities
	retryInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger

	mu           sync.Mutex
	backend      EmbeddingBackend
	device       core.Device
	lastFallback time.Time
}

var _ Embedder = (*Gateway)(nil)

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway) error

// WithGatewayRetryInterval sets the fallback dwell time before the accelerated device is retried.
func WithGatewayRetryInterval(d time.Duration) GatewayOption {
	return func(g *Gateway) error {
		if d < 0 {
			return errors.New("retry interval must not be negative")
		}
		g.retryInterval = d
		return nil
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		g.now = now
		return nil
	}
}

// WithLogger sets a custom logger for the gateway.
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) error {
		g.logger = logger
		return nil
	}
}

// NewGateway resolves model in registry and loads its backend. The
// accelerated device is tried first; a device-resource failure there starts
// the gateway on the fallback device. Any other load failure is returned.
func NewGateway(ctx context.Context, loader BackendLoader, registry *Registry, model string, opts ...GatewayOption) (*Gateway, error) {
	if loader == nil {
		return nil, ErrBackendLoaderRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	caps, err := registry.Resolve(model)
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		loader:        loader,
		model:         model,
		caps:          caps,
		retryInterval: DefaultRetryInterval,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	g.logger = g.logger.With("component", "embedding-gateway", "model", model)

	backend, err := loader(ctx, core.DeviceAccelerated)
	if err == nil {
		g.backend = backend
		g.device = core.DeviceAccelerated
		g.logger.Info("embedding model loaded", "device", g.device, "dimension", caps.Dimension)
		return g, nil
	}
	if !IsDeviceResourceError(err) {
		return nil, fmt.Errorf("%w: loading %s: %w", core.ErrEmbedding, model, err)
	}

	g.logger.Warn("accelerated device unavailable at startup, using fallback", "err", err)
	backend, ferr := loader(ctx, core.DeviceFallback)
	if ferr != nil {
		return nil, fmt.Errorf("%w: loading %s on fallback: %w", core.ErrEmbedding, model, ferr)
	}
	g.backend = backend
	g.device = core.DeviceFallback
	g.lastFallback = g.now()
	return g, nil
}

// Model returns the embedding model name.
func (g *Gateway) Model() string {
	return g.model
}

// Capabilities returns the registered capabilities of the model.
func (g *Gateway) Capabilities() ModelCapabilities {
	return g.caps
}

// Dimension returns the length of every vector the gateway produces.
func (g *Gateway) Dimension() int {
	return g.caps.Dimension
}

// Device returns the device currently in use.
func (g *Gateway) Device() core.Device {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.device
}

// BatchSize returns the batch size for the current device.
func (g *Gateway) BatchSize() int {
	return g.caps.BatchSize(g.Device())
}

// EmbedText embeds a single text.
func (g *Gateway) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.embedOnce(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds texts in batches sized for the current device.
func (g *Gateway) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return g.EmbedBatch(ctx, texts, 0)
}

// EmbedBatch embeds texts in batches of batchSize. A batchSize of zero or
// less uses the current device's batch size, re-read before every batch so a
// device switch mid-way takes effect immediately.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
		}
		size := batchSize
		if size <= 0 {
			size = g.BatchSize()
		}
		end := min(start+size, len(texts))
		vectors, err := g.embedOnce(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		result = append(result, vectors...)
		start = end
	}
	return result, nil
}

// Close releases the loaded backend.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.backend == nil {
		return nil
	}
	err := g.backend.Close()
	g.backend = nil
	return err
}

// embedOnce runs one backend call with device fallback and post-processing.
func (g *Gateway) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	backend, device, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}

	vectors, err := backend.Embed(ctx, texts)
	if err != nil && device == core.DeviceAccelerated && IsDeviceResourceError(err) {
		g.logger.Warn("device resource failure, switching to fallback", "batch", len(texts), "err", err)
		fallback, ferr := g.switchToFallback(ctx)
		if ferr != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, errors.Join(err, ferr))
		}
		vectors, err = fallback.Embed(ctx, texts)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}

	return g.finish(vectors, len(texts))
}

// acquire returns the backend to use, first attempting recovery to the
// accelerated device when the retry interval has elapsed.
func (g *Gateway) acquire(ctx context.Context) (EmbeddingBackend, core.Device, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.backend == nil {
		return nil, 0, fmt.Errorf("%w: gateway is closed", core.ErrEmbedding)
	}

	if g.device == core.DeviceFallback && g.now().Sub(g.lastFallback) > g.retryInterval {
		backend, err := g.loader(ctx, core.DeviceAccelerated)
		if err != nil {
			g.logger.Info("accelerated device still unavailable", "err", err)
			g.lastFallback = g.now()
		} else {
			if cerr := g.backend.Close(); cerr != nil {
				g.logger.Warn("failed to release fallback backend", "err", cerr)
			}
			g.backend = backend
			g.device = core.DeviceAccelerated
			g.logger.Info("recovered accelerated device")
		}
	}
	return g.backend, g.device, nil
}

// switchToFallback moves the gateway to the fallback device unless another
// caller already did, and returns the fallback backend.
func (g *Gateway) switchToFallback(ctx context.Context) (EmbeddingBackend, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.backend == nil {
		return nil, errors.New("gateway is closed")
	}
	if g.device == core.DeviceFallback {
		return g.backend, nil
	}

	backend, err := g.loader(ctx, core.DeviceFallback)
	if err != nil {
		return nil, fmt.Errorf("loading fallback: %w", err)
	}
	if err := g.backend.Close(); err != nil {
		g.logger.Warn("failed to release accelerated backend", "err", err)
	}
	g.backend = backend
	g.device = core.DeviceFallback
	g.lastFallback = g.now()
	return backend, nil
}

func (g *Gateway) finish(vectors [][]float32, want int) ([][]float32, error) {
	if len(vectors) != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCountMismatch, len(vectors), want)
	}
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != g.caps.Dimension {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), g.caps.Dimension)
		}
		out[i] = core.NormalizeVector(v)
	}
	return out, nil
}
