// Package simplifile is the HTTP client for the Simplifile e-recording
// service. Every package it creates is a draft; nothing is ever finalized
// from here.
package simplifile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"erecord/internal/config"
	"erecord/internal/logging"
	"erecord/internal/recording"
	"erecord/internal/services"
)

// Client talks to the Simplifile REST API for one submitter account.
type Client struct {
	baseURL     string
	apiToken    string
	submitterID string
	httpClient  *http.Client
	retryMax    int
	backoff     time.Duration
	logger      *slog.Logger
}

// NewClient builds a client from application configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     cfg.Simplifile.BaseURL,
		apiToken:    cfg.Simplifile.APIToken,
		submitterID: cfg.Simplifile.SubmitterID,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Submission.TimeoutSeconds) * time.Second,
		},
		retryMax: cfg.Submission.RetryMax,
		backoff:  time.Duration(cfg.Submission.BackoffSeconds) * time.Second,
		logger:   logging.NewComponentLogger(logger, "simplifile"),
	}
}

// envelope is the service's standard response wrapper.
type envelope struct {
	ResultCode string `json:"resultCode"`
	Message    string `json:"message"`
	PackageID  string `json:"packageID"`
}

// CreatePackage submits pkg as a draft and returns the service-assigned
// package identifier. Transport failures are retried with capped exponential
// backoff; a definitive rejection from the service is returned immediately.
func (c *Client) CreatePackage(ctx context.Context, pkg *recording.Package) (string, error) {
	payload, err := buildPayload(pkg)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrMalformedRow, "simplifile", "create package", "encode payload", err)
	}

	url := fmt.Sprintf("%s/sf/rest/api/erecord/submitters/%s/packages/create", c.baseURL, c.submitterID)

	var result envelope
	if err := c.postWithRetry(ctx, url, body, &result); err != nil {
		return "", err
	}

	if result.ResultCode != "SUCCESS" {
		message := result.Message
		if message == "" {
			message = "service returned " + result.ResultCode
		}
		return "", services.Wrap(services.ErrRejected, "simplifile", "create package", message, nil)
	}

	remoteID := result.PackageID
	if remoteID == "" {
		remoteID = pkg.PackageID
	}
	c.logger.Info("package draft created",
		logging.String("package", pkg.Name),
		logging.String("remote_id", remoteID))
	return remoteID, nil
}

// TestConnection verifies credentials against the recipients endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	url := fmt.Sprintf("%s/sf/rest/api/erecord/submitters/%s/recipients", c.baseURL, c.submitterID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return services.Wrap(services.ErrTransport, "simplifile", "test connection", "build request", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "simplifile", "test connection", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return services.Wrap(services.ErrConfiguration, "simplifile", "test connection",
			fmt.Sprintf("credentials rejected (HTTP %d)", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransport, "simplifile", "test connection",
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *Client) postWithRetry(ctx context.Context, url string, body []byte, out *envelope) error {
	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			c.logger.Warn("retrying request",
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Error(lastErr))
			select {
			case <-ctx.Done():
				return services.Wrap(services.ErrTransport, "simplifile", "request", "cancelled while retrying", ctx.Err())
			case <-time.After(delay):
			}
		}

		err := c.post(ctx, url, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, url string, body []byte, out *envelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrTransport, "simplifile", "request", "build request", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "simplifile", "request", "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return services.Wrap(services.ErrTransport, "simplifile", "request", "read response", err)
	}

	if resp.StatusCode >= 500 {
		return services.Wrap(services.ErrTransport, "simplifile", "request",
			fmt.Sprintf("server error %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrRejected, "simplifile", "request",
			fmt.Sprintf("request refused with status %d: %s", resp.StatusCode, truncate(string(data), 300)), nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return services.Wrap(services.ErrTransport, "simplifile", "request", "decode response", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api_token", c.apiToken)
}

// retryable reports whether an error is worth another attempt. Only
// transport-level failures qualify; rejections are definitive.
func retryable(err error) bool {
	return errors.Is(err, services.ErrTransport)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
