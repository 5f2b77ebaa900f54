// Package auth provides account registration, password verification and JWT
// session tokens. The authenticated user id becomes the explicit caller
// identity passed into every ledger mutation.
package auth

import (
	"context"

	"github.com/chaintab/chaintab/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// The abstraction allows swapping auth methods (password, passkeys, OAuth)
// without changing the HTTP layer.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
