// Package authority is the only point of contact with the two external
// collaborators: the cross-chain transmitter that verifies attestations and
// mints funds, and the funding token used for direct payments. Both are
// trusted, all-or-nothing calls; a failure aborts the enclosing operation.
package authority

import "context"

// Authority verifies an attested message and, on success, mints the burned
// amount to this system's treasury balance. The message and attestation are
// valid for a single call and discarded afterwards regardless of outcome.
type Authority interface {
	ReceiveMessage(ctx context.Context, message, attestation []byte) (bool, error)
}

// Token is the funding-token collaborator used for the direct payment path.
type Token interface {
	BalanceOf(ctx context.Context, account string) (uint64, error)
	TransferFrom(ctx context.Context, from, to string, amount uint64) (bool, error)
}
