package sprite

import "go.uber.org/zap"

// PoolBuilderOption is a functional option for configuring a Pool during construction.
type PoolBuilderOption func(*pool)

// WithCapacity sets the fixed number of slots in the Pool. Defaults to 512.
//
// Parameters:
//   - capacity: the maximum number of sprites that can exist at once
//
// Returns:
//   - PoolBuilderOption: functional option to set the capacity
func WithCapacity(capacity int) PoolBuilderOption {
	return func(p *pool) {
		p.capacity = capacity
	}
}

// WithLogger sets the logger used for slot lifecycle events.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - PoolBuilderOption: functional option to set the logger
func WithLogger(logger *zap.Logger) PoolBuilderOption {
	return func(p *pool) {
		p.logger = logger
	}
}
