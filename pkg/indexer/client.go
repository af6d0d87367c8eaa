// Package indexer talks to the local biometric indexing service. The
// service extracts searchable hashes from biometric samples; indexing is
// expensive, so submissions go through a Throttle.
package indexer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tensor-horizon/evidence-exchange/internal/metrics"
	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
)

// Biometric types the indexing service understands. Facial samples are
// indexed under "image".
const (
	TypeImage       = "image"
	TypeFingerprint = "fingerprint"
	TypeVoice       = "voice"
)

// Entry is one biometric sample to index under a suspect profile.
type Entry struct {
	SuspectID     string
	BiometricType string
	Content       []byte
	Owner         string
	Sensitive     bool
}

// HashQuery describes the sample set to hash for a search. Empty URLs
// switch the corresponding modality off.
type HashQuery struct {
	FaceURL        string
	FingerprintURL string
	VoiceURL       string
}

// Hash is the searchable hash set produced by the indexing service,
// tagged with the exchanging parties.
type Hash map[string]any

// Match is one search result row.
type Match map[string]any

type indexBody struct {
	SuspectID     string `json:"suspect_id"`
	BiometricType string `json:"biometric_type"`
	DataURL       string `json:"full_biometric_data_url"`
	Owner         string `json:"owner"`
	Sensitive     bool   `json:"sensitive"`
}

type hashTypeFlags struct {
	Image       bool `json:"image"`
	Fingerprint bool `json:"fingerprint"`
	Voice       bool `json:"voice"`
}

type hashBody struct {
	Type           hashTypeFlags `json:"type"`
	FaceURL        string        `json:"full_facial_image_url"`
	FingerprintURL string        `json:"full_fingerprint_url"`
	VoiceURL       string        `json:"full_voice_url"`
}

// Client is the HTTP client of the indexing service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates an indexing client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid indexer configuration")
	}
	s := applyOptions(opts)
	httpClient := s.httpClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 5 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: s.logger}, nil
}

// Index submits one sample for indexing. Content travels base64-encoded
// in the body.
func (c *Client) Index(ctx context.Context, entry Entry) error {
	body := indexBody{
		SuspectID:     entry.SuspectID,
		BiometricType: entry.BiometricType,
		DataURL:       base64.StdEncoding.EncodeToString(entry.Content),
		Owner:         entry.Owner,
		Sensitive:     entry.Sensitive,
	}

	started := time.Now()
	if err := c.post(ctx, "/indexLocalData", body, nil); err != nil {
		return err
	}
	c.logger.Info("Indexed biometric sample",
		zap.String("suspect", entry.SuspectID),
		zap.String("type", entry.BiometricType),
		zap.Duration("took", time.Since(started)))
	return nil
}

// HashForSearch asks the indexing service to hash the query samples and
// tags the result with the uppercased exchanging party ids.
func (c *Client) HashForSearch(ctx context.Context, query HashQuery, from, to string) (Hash, error) {
	body := hashBody{
		Type: hashTypeFlags{
			Image:       query.FaceURL != "",
			Fingerprint: query.FingerprintURL != "",
			Voice:       query.VoiceURL != "",
		},
		FaceURL:        query.FaceURL,
		FingerprintURL: query.FingerprintURL,
		VoiceURL:       query.VoiceURL,
	}

	var hash Hash
	if err := c.post(ctx, "/calculateHashForSearching", body, &hash); err != nil {
		return nil, err
	}
	hash["from"] = strings.ToUpper(from)
	hash["to"] = strings.ToUpper(to)
	return hash, nil
}

// SearchMatches runs a hash set against the local index.
func (c *Client) SearchMatches(ctx context.Context, hash Hash) ([]Match, error) {
	var matches []Match
	if err := c.post(ctx, "/searchForMatches", hash, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode indexer body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build indexer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	timer := prometheus.NewTimer(metrics.ExternalRequestDuration.WithLabelValues("indexer"))
	resp, err := c.httpClient.Do(req)
	timer.ObserveDuration()
	if err != nil {
		return apperrors.UpstreamError(err, "indexing service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		c.logger.Error("Indexer call rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", errBody))
		return apperrors.UpstreamError(
			fmt.Errorf("indexer returned status %d", resp.StatusCode),
			"indexing service rejected call")
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.UpstreamError(err, "indexer response unreadable")
	}
	return nil
}
