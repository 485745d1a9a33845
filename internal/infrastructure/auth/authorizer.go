// Package auth implements the authorization gate of the escrow engine with
// secp256k1 ECDSA signatures. Every proof is bound to a single invocation by
// a per-account nonce that must strictly increase.
package auth

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/escrowd/internal/core/ports"
)

type authorizer struct {
	nonces ports.NonceRepository
}

func NewAuthorizer(nonces ports.NonceRepository) (ports.Authorizer, error) {
	if nonces == nil {
		return nil, fmt.Errorf("missing nonce repository")
	}
	return &authorizer{nonces}, nil
}

func (a *authorizer) Caller(ctx context.Context) (string, error) {
	inv, ok := invocationFromContext(ctx)
	if !ok || len(inv.caller) <= 0 {
		return "", fmt.Errorf("%w: missing caller", ports.ErrAuthFailed)
	}
	return inv.caller, nil
}

// RequireAuth looks for a proof from account in the context, verifies it's
// a valid signature of the given invocation and consumes its nonce. The
// nonce is stored with the context's store transaction, if any.
func (a *authorizer) RequireAuth(
	ctx context.Context, account string, inv ports.Invocation,
) error {
	if len(account) <= 0 {
		return fmt.Errorf("%w: missing account", ports.ErrAuthFailed)
	}

	invocation, _ := invocationFromContext(ctx)

	var proof *Proof
	for i := range invocation.proofs {
		if invocation.proofs[i].Account == account {
			proof = &invocation.proofs[i]
			break
		}
	}
	if proof == nil {
		return fmt.Errorf(
			"%w: missing proof for account %s", ports.ErrAuthFailed, account,
		)
	}

	if err := proof.verify(inv); err != nil {
		log.WithError(err).WithField("account", account).Debug(
			"proof verification failed",
		)
		return fmt.Errorf("%w: %s", ports.ErrAuthFailed, err)
	}

	if err := a.nonces.UpdateNonce(ctx, account, proof.Nonce); err != nil {
		return fmt.Errorf("%w: %s", ports.ErrAuthFailed, err)
	}
	return nil
}
