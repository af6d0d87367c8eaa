// Package platform implements the envelope API of the data-sharing
// platform: submitting access requests and responses and fetching
// recorded requests. The platform brokers the exchange; the payloads
// themselves travel through pod storage.
package platform

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
)

// Envelope is a platform record. The platform owns the schema and
// extends it without notice, so records stay schemaless on this side
// and only the keys this service writes are typed.
type Envelope map[string]any

// RequestSubmission is an access request to be recorded on the platform.
type RequestSubmission struct {
	RecipientWebID string
	ResourceIndex  string
	Duration       int
	AccessType     string
	EncryptionKey  string
	Scores         Scores
}

// ResponseSubmission is an access response to be recorded on the platform.
type ResponseSubmission struct {
	RequestID        int64
	RecipientAddress string
	ResourceURL      string
	Duration         int
	AccessType       string
	ResponseType     string
	Terms            string
}

type requestBody struct {
	RecipientWebID string `json:"recipientWebId"`
	ResIndex       string `json:"resIndex"`
	Duration       int    `json:"duration"`
	AccessType     string `json:"accessType"`
	EncryptionKey  string `json:"encryptionKey"`
	Scores         Scores `json:"scores"`
}

type responseBody struct {
	RequestID        int64  `json:"requestId"`
	RecipientAddress string `json:"recipientAddress"`
	ResURL           string `json:"resUrl"`
	Duration         int    `json:"duration"`
	AccessType       string `json:"accessType"`
	ResponseType     string `json:"responseType"`
	Terms            string `json:"tos"`
}

// Client talks to a participant's data-sharing platform instance.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a platform envelope client.
func New(opts ...Option) *Client {
	s := applyOptions(opts)
	httpClient := s.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: s.timeout}
	}
	return &Client{httpClient: httpClient, logger: s.logger}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	timer := prometheus.NewTimer(metrics.ExternalRequestDuration.WithLabelValues("platform"))
	defer timer.ObserveDuration()
	return c.httpClient.Do(req)
}

// SubmitRequest records an access request and returns the platform's
// record merged with the locally-known request parameters. The merge
// keeps downstream consumers working even when the platform echoes a
// reduced record.
func (c *Client) SubmitRequest(ctx context.Context, baseURL string, sub RequestSubmission, token string) (Envelope, error) {
	body := requestBody{
		RecipientWebID: sub.RecipientWebID,
		ResIndex:       sub.ResourceIndex,
		Duration:       sub.Duration,
		AccessType:     sub.AccessType,
		EncryptionKey:  sub.EncryptionKey,
		Scores:         sub.Scores,
	}

	env, err := c.post(ctx, baseURL+"/api/requests", body, token)
	if err != nil {
		return nil, err
	}

	env["recipientWebId"] = sub.RecipientWebID
	env["resIndex"] = sub.ResourceIndex
	env["duration"] = sub.Duration
	env["accessType"] = sub.AccessType
	env["encKey"] = sub.EncryptionKey
	return env, nil
}

// SubmitResponse records an access response and returns the platform's
// record merged with the response parameters the platform does not echo.
func (c *Client) SubmitResponse(ctx context.Context, baseURL string, sub ResponseSubmission, token string) (Envelope, error) {
	body := responseBody{
		RequestID:        sub.RequestID,
		RecipientAddress: sub.RecipientAddress,
		ResURL:           sub.ResourceURL,
		Duration:         sub.Duration,
		AccessType:       sub.AccessType,
		ResponseType:     sub.ResponseType,
		Terms:            sub.Terms,
	}

	env, err := c.post(ctx, baseURL+"/api/responses", body, token)
	if err != nil {
		return nil, err
	}

	env["requestId"] = sub.RequestID
	env["duration"] = sub.Duration
	env["responseType"] = sub.ResponseType
	env["tos"] = sub.Terms
	return env, nil
}

// GetRequest fetches a recorded access request by its platform id.
func (c *Client) GetRequest(ctx context.Context, baseURL string, requestID int64, token string) (Envelope, error) {
	endpoint := fmt.Sprintf("%s/api/requests/%d", baseURL, requestID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request fetch: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", token)

	resp, err := c.do(req)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "sharing platform unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.UpstreamError(
			fmt.Errorf("request fetch returned status %d", resp.StatusCode),
			"access request unavailable")
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apperrors.UpstreamError(err, "platform record unreadable")
	}
	return env, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any, token string) (Envelope, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode platform body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build platform request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Cookie", token)

	resp, err := c.do(req)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "sharing platform unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		c.logger.Error("Platform submission rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", errBody))
		return nil, apperrors.UpstreamError(
			fmt.Errorf("platform returned status %d", resp.StatusCode),
			"sharing platform rejected submission")
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apperrors.UpstreamError(err, "platform record unreadable")
	}
	return env, nil
}
