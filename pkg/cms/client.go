// Package cms notifies a participant's case-management system that an
// access response has been recorded. The CMS correlates the merged
// request/response pair with its open case and moves it forward.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tensor-horizon/evidence-exchange/internal/metrics"
	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
	"github.com/tensor-horizon/evidence-exchange/pkg/platform"
)

// CaseUpdate pairs the platform's request and response records for one
// exchange.
type CaseUpdate struct {
	Request  platform.Envelope `json:"request"`
	Response platform.Envelope `json:"response"`
}

// Client posts case updates to case-management endpoints. Endpoints are
// per-participant; the service token is shared.
type Client struct {
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a CMS client authenticating with the given internal
// service token.
func New(token string, opts ...Option) *Client {
	s := applyOptions(opts)
	httpClient := s.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: s.timeout}
	}
	return &Client{token: token, httpClient: httpClient, logger: s.logger}
}

// Notify delivers a case update to the given CMS endpoint.
func (c *Client) Notify(ctx context.Context, endpoint string, update CaseUpdate) error {
	raw, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encode case update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/cases/receive-dsp-response", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build case update request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "InternalWS "+c.token)

	timer := prometheus.NewTimer(metrics.ExternalRequestDuration.WithLabelValues("cms"))
	resp, err := c.httpClient.Do(req)
	timer.ObserveDuration()
	if err != nil {
		return apperrors.UpstreamError(err, "case management system unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		c.logger.Error("Case update rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", errBody))
		return apperrors.UpstreamError(
			fmt.Errorf("case update returned status %d", resp.StatusCode),
			"case management system rejected update")
	}

	c.logger.Info("Case update delivered",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode))
	return nil
}
