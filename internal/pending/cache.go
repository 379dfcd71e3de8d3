// Package pending holds proof photos that arrived while the sender still had
// to pick which habit they belong to.
package pending

import (
	"context"
	"errors"
)

// ErrSessionExpired is returned by Take when nothing is cached for the user,
// either because it expired or because it was never stored.
var ErrSessionExpired = errors.New("session expired, please send the photo again")

// Proof is the unconfirmed submission awaiting a habit choice.
type Proof struct {
	ProofToken string `json:"proof_token"`
	FirstName  string `json:"first_name,omitempty"`
}

// Cache is a best-effort, short-lived store keyed by user id. A newer Put for
// the same user replaces the older proof. Losing entries is acceptable.
type Cache interface {
	Put(ctx context.Context, userID int64, proof Proof) error
	// Take returns and removes the cached proof.
	Take(ctx context.Context, userID int64) (Proof, error)
}
