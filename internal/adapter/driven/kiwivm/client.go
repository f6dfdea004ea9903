// Package kiwivm implements the ServiceClient port against the KiwiVM
// (64clouds) REST API using resty.
package kiwivm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ericfisherdev/vpspanel/internal/domain/model"
	"github.com/ericfisherdev/vpspanel/internal/domain/port/driven"
)

const (
	serviceInfoPath = "/v1/getServiceInfo"
	userAgent       = "vpspanel"
)

// Compile-time interface satisfaction check.
var _ driven.ServiceClient = (*Client)(nil)

// Client implements the driven.ServiceClient port. Requests carry the
// credentials as query parameters, as the provider requires. There is no
// retry and no response caching.
type Client struct {
	rc     *resty.Client
	logger *slog.Logger
}

// NewClient creates a Client for the provider at baseURL (for example
// "https://api.64clouds.com"). timeout bounds each request end to end.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return newClient(resty.New().SetTimeout(timeout), baseURL, logger)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) *Client {
	return newClient(resty.NewWithClient(httpClient), baseURL, logger)
}

func newClient(rc *resty.Client, baseURL string, logger *slog.Logger) *Client {
	rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("upstream request",
			"method", req.Method,
			"path", req.URL,
			"veid", req.QueryParam.Get("veid"),
		)
		return nil
	})

	return &Client{rc: rc, logger: logger}
}

// serviceInfoResponse mirrors the getServiceInfo JSON body. Required fields
// are pointers so a missing field can be told apart from a zero value.
type serviceInfoResponse struct {
	Error           int       `json:"error"`
	Message         string    `json:"message"`
	Plan            *string   `json:"plan"`
	IPAddresses     *[]string `json:"ip_addresses"`
	PlanMonthlyData *uint64   `json:"plan_monthly_data"`
	DataCounter     *uint64   `json:"data_counter"`
	DataNextReset   int64     `json:"data_next_reset"`
	NodeLocation    string    `json:"node_location"`
	OS              string    `json:"os"`
}

// FetchServiceStatus retrieves the service info for cred and derives its status.
// Transport failures are reported with driven.ErrNetwork, unusable responses
// with driven.ErrDecode. Neither carries the API key.
func (c *Client) FetchServiceStatus(ctx context.Context, cred model.Credential) (model.ServiceStatus, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"veid":    cred.VEID,
			"api_key": cred.APIKey,
		}).
		Get(serviceInfoPath)
	if err != nil {
		return model.ServiceStatus{}, &driven.FetchError{VEID: cred.VEID, Kind: driven.ErrNetwork, Err: redact(err, cred.APIKey)}
	}

	info, err := decodeServiceInfo(resp.StatusCode(), resp.Body())
	if err != nil {
		c.logger.Warn("unusable upstream response", "veid", cred, "status", resp.StatusCode(), "error", err)
		return model.ServiceStatus{}, &driven.FetchError{VEID: cred.VEID, Kind: driven.ErrDecode, Err: err}
	}

	return model.NewServiceStatus(cred.VEID, info), nil
}

func decodeServiceInfo(status int, body []byte) (model.ServiceInfo, error) {
	if status < 200 || status > 299 {
		return model.ServiceInfo{}, fmt.Errorf("unexpected status %d", status)
	}

	var raw serviceInfoResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.ServiceInfo{}, fmt.Errorf("decoding response body: %w", err)
	}

	if raw.Error != 0 {
		return model.ServiceInfo{}, fmt.Errorf("provider returned error %d: %s", raw.Error, raw.Message)
	}

	var missing []string
	if raw.Plan == nil {
		missing = append(missing, "plan")
	}
	if raw.IPAddresses == nil {
		missing = append(missing, "ip_addresses")
	}
	if raw.PlanMonthlyData == nil {
		missing = append(missing, "plan_monthly_data")
	}
	if raw.DataCounter == nil {
		missing = append(missing, "data_counter")
	}
	if len(missing) > 0 {
		return model.ServiceInfo{}, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}

	return model.ServiceInfo{
		Plan:            *raw.Plan,
		IPAddresses:     *raw.IPAddresses,
		PlanMonthlyData: *raw.PlanMonthlyData,
		DataCounter:     *raw.DataCounter,
		DataNextReset:   raw.DataNextReset,
		NodeLocation:    raw.NodeLocation,
		OS:              raw.OS,
	}, nil
}

// redact strips the query string from transport errors, which would
// otherwise echo the API key back to logs and HTTP responses.
func redact(err error, apiKey string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		u, _, _ := strings.Cut(uerr.URL, "?")
		err = &url.Error{Op: uerr.Op, URL: u, Err: uerr.Err}
	}
	if apiKey != "" && strings.Contains(err.Error(), apiKey) {
		return &redactedError{msg: strings.ReplaceAll(err.Error(), apiKey, "REDACTED"), err: err}
	}
	return err
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
