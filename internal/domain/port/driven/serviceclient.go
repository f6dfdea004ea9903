package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/vpspanel/internal/domain/model"
)

// Error kinds carried by FetchError. Match them with errors.Is.
var (
	// ErrNetwork reports that the provider could not be reached (connect,
	// TLS, or timeout failure).
	ErrNetwork = errors.New("network error")

	// ErrDecode reports that the provider answered with a body that does not
	// match the expected service info schema.
	ErrDecode = errors.New("decode error")
)

// ServiceClient defines the driven port for querying a single account's
// service status from the hosting provider. Every call hits the network.
type ServiceClient interface {
	FetchServiceStatus(ctx context.Context, cred model.Credential) (model.ServiceStatus, error)
}

// FetchError is returned by ServiceClient implementations. It is tagged with
// the account it was fetching and never includes the API key.
type FetchError struct {
	VEID string
	Kind error // ErrNetwork or ErrDecode.
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching service info for veid %s: %v: %v", e.VEID, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
