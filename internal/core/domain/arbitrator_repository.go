package domain

import "context"

// ArbitratorRepository is the abstraction for any kind of database intended
// to persist the registry of arbitrators. Membership is presence only.
type ArbitratorRepository interface {
	// AddArbitrator registers the given address. Adding an already registered
	// address is a no-op.
	AddArbitrator(ctx context.Context, address string) error
	// RemoveArbitrator unregisters the given address. Removing an unknown
	// address is a no-op.
	RemoveArbitrator(ctx context.Context, address string) error
	// IsRegistered returns whether the address is a registered arbitrator.
	IsRegistered(ctx context.Context, address string) (bool, error)
	// GetAllArbitrators returns every registered address.
	GetAllArbitrators(ctx context.Context) ([]string, error)
}
