package driven

import (
	"context"

	"github.com/ericfisherdev/vpspanel/internal/domain/model"
)

// CredentialStore defines the driven port that supplies the configured
// account credentials. Implementations must be safe for concurrent use and
// return a slice the caller may retain.
type CredentialStore interface {
	Credentials(ctx context.Context) ([]model.Credential, error)
}
