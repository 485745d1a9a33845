package auth

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/tdex-network/escrowd/internal/core/ports"
)

// Proof is the proof of intent of an account for a single invocation.
// Account is the hex encoded compressed public key of the signer, Signature
// the hex encoded DER ECDSA signature of the invocation digest.
type Proof struct {
	Account   string `json:"account"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

type invocationKey struct{}

type invocation struct {
	caller string
	proofs []Proof
}

// WithInvocation returns a copy of the context carrying the caller of an
// operation together with the proofs supplied along with the call.
func WithInvocation(
	ctx context.Context, caller string, proofs ...Proof,
) context.Context {
	return context.WithValue(ctx, invocationKey{}, invocation{caller, proofs})
}

func invocationFromContext(ctx context.Context) (invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(invocation)
	return inv, ok
}

// Account returns the account identifier of the given public key.
func Account(pubkey *btcec.PublicKey) string {
	return hex.EncodeToString(pubkey.SerializeCompressed())
}

// Sign returns the proof that the owner of key intends to perform the given
// invocation.
func Sign(
	key *btcec.PrivateKey, inv ports.Invocation, nonce uint64,
) (*Proof, error) {
	digest, err := Digest(inv, nonce)
	if err != nil {
		return nil, err
	}
	sig := ecdsa.Sign(key, digest)

	return &Proof{
		Account:   Account(key.PubKey()),
		Nonce:     nonce,
		Signature: hex.EncodeToString(sig.Serialize()),
	}, nil
}

// Digest returns the double sha256 hash of the serialized invocation, that is the
// var-string encoded method and arguments followed by the big-endian nonce.
func Digest(inv ports.Invocation, nonce uint64) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.WriteVarString(buf, 0, inv.Method); err != nil {
		return nil, err
	}
	for _, arg := range inv.Args {
		if err := wire.WriteVarString(buf, 0, arg); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(buf, binary.BigEndian, nonce); err != nil {
		return nil, err
	}
	return chainhash.HashB(buf.Bytes()), nil
}

func (p Proof) verify(inv ports.Invocation) error {
	pubkeyBytes, err := hex.DecodeString(p.Account)
	if err != nil {
		return fmt.Errorf("invalid account format: %s", err)
	}
	pubkey, err := btcec.ParsePubKey(pubkeyBytes)
	if err != nil {
		return fmt.Errorf("invalid account public key: %s", err)
	}

	sigBytes, err := hex.DecodeString(p.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature format: %s", err)
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("invalid signature: %s", err)
	}

	digest, err := Digest(inv, p.Nonce)
	if err != nil {
		return err
	}
	if !sig.Verify(digest, pubkey) {
		return fmt.Errorf("signature verification failed")
	}
	return nil
}
