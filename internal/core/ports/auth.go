package ports

import (
	"context"
	"errors"
)

var (
	// ErrAuthFailed is wrapped by every failure of the authorization gate.
	ErrAuthFailed = errors.New("authorization failed")
	// ErrNonceAlreadyUsed is returned if a proof reuses a nonce not greater
	// than the last one accepted for the account.
	ErrNonceAlreadyUsed = errors.New("nonce already used")
)

// Invocation identifies the call a proof must be bound to.
type Invocation struct {
	Method string
	Args   []string
}

// Authorizer is the cross-cutting gate that verifies the caller of an
// operation is cryptographically proven to be a specific account.
type Authorizer interface {
	// Caller returns the account claimed by the caller of the current
	// invocation.
	Caller(ctx context.Context) (string, error)
	// RequireAuth verifies that account supplied a proof for the given
	// invocation.
	RequireAuth(ctx context.Context, account string, inv Invocation) error
}

// NonceRepository persists the last nonce accepted for every account.
type NonceRepository interface {
	GetNonce(ctx context.Context, account string) (uint64, error)
	// UpdateNonce stores the given nonce for the account. It fails with
	// ErrNonceAlreadyUsed if nonce is not greater than the stored one.
	UpdateNonce(ctx context.Context, account string, nonce uint64) error
}
