package domain

import "context"

// ConfigRepository is the abstraction for any kind of database intended to
// persist the escrow Config. Every field is stored under its own key.
type ConfigRepository interface {
	// IsInitialized returns whether the config has ever been stored.
	IsInitialized(ctx context.Context) (bool, error)
	// InitConfig stores the given config and marks the escrow as initialized.
	// It fails with ErrAlreadyInitialized if called more than once.
	InitConfig(ctx context.Context, cfg Config) error
	// GetConfig returns the stored config or ErrNotInitialized.
	GetConfig(ctx context.Context) (*Config, error)
	// UpdateConfig allows to commit multiple changes to the config in a
	// transactional way. Admin and ValueAsset can't be changed.
	UpdateConfig(
		ctx context.Context, updateFn func(c *Config) (*Config, error),
	) error
}
