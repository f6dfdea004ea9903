package application_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/vpspanel/internal/application"
	"github.com/ericfisherdev/vpspanel/internal/domain/model"
	"github.com/ericfisherdev/vpspanel/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockCredentialStore struct {
	creds []model.Credential
	err   error
}

func (m *mockCredentialStore) Credentials(_ context.Context) ([]model.Credential, error) {
	return m.creds, m.err
}

type mockServiceClient struct {
	fetch func(ctx context.Context, cred model.Credential) (model.ServiceStatus, error)
	calls atomic.Int32
}

func (m *mockServiceClient) FetchServiceStatus(ctx context.Context, cred model.Credential) (model.ServiceStatus, error) {
	m.calls.Add(1)
	return m.fetch(ctx, cred)
}

func statusFor(cred model.Credential) model.ServiceStatus {
	return model.NewServiceStatus(cred.VEID, model.ServiceInfo{
		Plan:            "plan-" + cred.VEID,
		IPAddresses:     []string{"192.0.2.1"},
		PlanMonthlyData: 1000,
		DataCounter:     250,
	})
}

func threeCreds() []model.Credential {
	return []model.Credential{
		{VEID: "1", APIKey: "a"},
		{VEID: "2", APIKey: "b"},
		{VEID: "3", APIKey: "c"},
	}
}

// --- Tests ---

func TestFetchAll_Success(t *testing.T) {
	client := &mockServiceClient{fetch: func(_ context.Context, cred model.Credential) (model.ServiceStatus, error) {
		return statusFor(cred), nil
	}}
	svc := application.NewStatusService(&mockCredentialStore{creds: threeCreds()}, client, slog.Default())

	got, err := svc.FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int32(3), client.calls.Load())
	assert.Equal(t, "1", got[0].VEID)
	assert.Equal(t, "2", got[1].VEID)
	assert.Equal(t, "3", got[2].VEID)
	assert.Equal(t, "plan-2", got[1].Plan)
	assert.Equal(t, 25.0, got[1].UsagePercentage)
}

func TestFetchAll_PreservesCredentialOrder(t *testing.T) {
	// Later credentials answer first.
	client := &mockServiceClient{fetch: func(_ context.Context, cred model.Credential) (model.ServiceStatus, error) {
		switch cred.VEID {
		case "1":
			time.Sleep(30 * time.Millisecond)
		case "2":
			time.Sleep(15 * time.Millisecond)
		}
		return statusFor(cred), nil
	}}
	svc := application.NewStatusService(&mockCredentialStore{creds: threeCreds()}, client, slog.Default())

	got, err := svc.FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{got[0].VEID, got[1].VEID, got[2].VEID})
}

func TestFetchAll_FailFast(t *testing.T) {
	upstreamErr := &driven.FetchError{VEID: "2", Kind: driven.ErrNetwork, Err: errors.New("connection refused")}
	client := &mockServiceClient{fetch: func(_ context.Context, cred model.Credential) (model.ServiceStatus, error) {
		if cred.VEID == "2" {
			return model.ServiceStatus{}, upstreamErr
		}
		return statusFor(cred), nil
	}}
	svc := application.NewStatusService(&mockCredentialStore{creds: threeCreds()}, client, slog.Default())

	got, err := svc.FetchAll(context.Background())

	assert.Nil(t, got)
	require.ErrorIs(t, err, driven.ErrNetwork)
	assert.Contains(t, err.Error(), "veid 2")
	// Every fetch is still issued; the failure does not stop the others.
	assert.Equal(t, int32(3), client.calls.Load())
}

func TestFetchAll_ZeroCredentials(t *testing.T) {
	client := &mockServiceClient{fetch: func(_ context.Context, _ model.Credential) (model.ServiceStatus, error) {
		t.Fatal("no fetch expected")
		return model.ServiceStatus{}, nil
	}}
	svc := application.NewStatusService(&mockCredentialStore{}, client, slog.Default())

	got, err := svc.FetchAll(context.Background())

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchAll_DuplicateCredentialsQueriedIndependently(t *testing.T) {
	creds := []model.Credential{{VEID: "9", APIKey: "k"}, {VEID: "9", APIKey: "k"}}
	client := &mockServiceClient{fetch: func(_ context.Context, cred model.Credential) (model.ServiceStatus, error) {
		return statusFor(cred), nil
	}}
	svc := application.NewStatusService(&mockCredentialStore{creds: creds}, client, slog.Default())

	got, err := svc.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestFetchAll_CredentialStoreError(t *testing.T) {
	storeErr := errors.New("configuration not initialized")
	client := &mockServiceClient{}
	svc := application.NewStatusService(&mockCredentialStore{err: storeErr}, client, slog.Default())

	got, err := svc.FetchAll(context.Background())

	assert.Nil(t, got)
	require.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "reading credentials")
	assert.Equal(t, int32(0), client.calls.Load())
}

// TestFetchAll_FansOutConcurrently blocks every fetch until all of them have
// started; a sequential implementation would never get past the first.
func TestFetchAll_FansOutConcurrently(t *testing.T) {
	const n = 8
	creds := make([]model.Credential, n)
	for i := range creds {
		creds[i] = model.Credential{VEID: string(rune('a' + i)), APIKey: "k"}
	}

	var started sync.WaitGroup
	started.Add(n)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	client := &mockServiceClient{fetch: func(_ context.Context, cred model.Credential) (model.ServiceStatus, error) {
		started.Done()
		select {
		case <-allStarted:
			return statusFor(cred), nil
		case <-time.After(2 * time.Second):
			return model.ServiceStatus{}, errors.New("fetches were not concurrent")
		}
	}}
	svc := application.NewStatusService(&mockCredentialStore{creds: creds}, client, slog.Default())

	got, err := svc.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, n)
}

func TestFetchAll_DetachedFromCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &mockServiceClient{fetch: func(ctx context.Context, cred model.Credential) (model.ServiceStatus, error) {
		if err := ctx.Err(); err != nil {
			return model.ServiceStatus{}, err
		}
		return statusFor(cred), nil
	}}
	svc := application.NewStatusService(&mockCredentialStore{creds: threeCreds()}, client, slog.Default())

	got, err := svc.FetchAll(ctx)

	require.NoError(t, err)
	assert.Len(t, got, 3)
}
