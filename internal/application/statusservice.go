// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/vpspanel/internal/domain/model"
	"github.com/ericfisherdev/vpspanel/internal/domain/port/driven"
)

// StatusService aggregates the service status of every configured account.
type StatusService struct {
	creds  driven.CredentialStore
	client driven.ServiceClient
	logger *slog.Logger
}

// NewStatusService creates a new StatusService with all required dependencies.
func NewStatusService(creds driven.CredentialStore, client driven.ServiceClient, logger *slog.Logger) *StatusService {
	return &StatusService{
		creds:  creds,
		client: client,
		logger: logger,
	}
}

// FetchAll queries every configured account concurrently and waits for all
// of them. It is fail-fast: if any fetch fails, FetchAll returns that error
// and no statuses. Successful results follow credential order.
//
// Fetches are detached from ctx cancellation, so a client that disconnects
// does not abort in-flight upstream calls; the upstream client's timeout
// bounds them instead.
func (s *StatusService) FetchAll(ctx context.Context) ([]model.ServiceStatus, error) {
	creds, err := s.creds.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	start := time.Now()
	fetchCtx := context.WithoutCancel(ctx)
	statuses := make([]model.ServiceStatus, len(creds))

	var g errgroup.Group
	for i, cred := range creds {
		g.Go(func() error {
			status, err := s.client.FetchServiceStatus(fetchCtx, cred)
			if err != nil {
				s.logger.Error("service status fetch failed", "veid", cred, "error", err)
				return err
			}
			statuses[i] = status
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("service statuses fetched",
		"accounts", len(creds),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return statuses, nil
}
