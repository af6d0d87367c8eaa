// Package solid implements the client protocol to the pod storage behind
// the data-sharing platform: upload, download, access grants and resource
// URL resolution. Every call authenticates with the caller's session
// cookie.
package solid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tensor-horizon/evidence-exchange/internal/metrics"
	"github.com/tensor-horizon/evidence-exchange/internal/multipartform"
	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
)

// CiphertextSuffix is the filename suffix every stored ciphertext carries.
const CiphertextSuffix = ".zip.enc"

// ErrAbsent marks a download that came back with a non-200 status. The
// caller decides what absence means; after an access request it usually
// means the access window elapsed.
var ErrAbsent = errors.New("resource absent")

// Client talks to pod storage through the sharing platform's resource API.
// Endpoints are per-participant, so every method takes the platform base
// URL of the pod owner.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a storage transfer client.
func New(opts ...Option) *Client {
	s := applyOptions(opts)
	httpClient := s.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: s.timeout}
	}
	return &Client{httpClient: httpClient, logger: s.logger}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	timer := prometheus.NewTimer(metrics.ExternalRequestDuration.WithLabelValues("storage"))
	defer timer.ObserveDuration()
	return c.httpClient.Do(req)
}

// EncodePath joins path segments into one platform resource path segment,
// %2F-separated, with a trailing separator. The platform treats the whole
// resource path as a single URL path element.
func EncodePath(segments ...string) string {
	return strings.Join(segments, "%2F") + "%2F"
}

// WebID returns the identity URL of a pod on its storage endpoint.
func WebID(storageEndpoint, pod string) string {
	return storageEndpoint + "/" + pod + "/profile/card#me"
}

// Upload stores content under the given resource path as a multipart POST.
// The index part carries the caller-supplied logical identifier,
// independent of the stored filename.
func (c *Client) Upload(ctx context.Context, baseURL, resourcePath, index, fileName string, content []byte, token string) error {
	form := multipartform.New()
	if err := form.AddField("index", index); err != nil {
		return err
	}
	if err := form.AddFile("file", fileName, content); err != nil {
		return err
	}
	body, err := form.Reader()
	if err != nil {
		return err
	}

	endpoint := baseURL + "/api/resources/" + resourcePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.ContentType())
	req.Header.Set("Cookie", token)

	resp, err := c.do(req)
	if err != nil {
		return apperrors.UpstreamError(err, "pod storage unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		c.logger.Error("Upload returned non-2xx",
			zap.String("path", resourcePath),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", errBody))
		return apperrors.UpstreamError(
			fmt.Errorf("upload returned status %d", resp.StatusCode),
			"pod storage upload failed")
	}

	c.logger.Info("Uploaded resource",
		zap.String("path", resourcePath),
		zap.String("file", fileName),
		zap.Int("size", len(content)))
	return nil
}

// Download fetches a stored resource. Any non-200 response yields
// ErrAbsent; the error body is logged, never parsed.
func (c *Client) Download(ctx context.Context, baseURL, resourcePath, token string) ([]byte, error) {
	endpoint := baseURL + "/api/resources/" + resourcePath + "?toJSONld=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", token)

	resp, err := c.do(req)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "pod storage unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		c.logger.Warn("Download returned non-200",
			zap.String("path", resourcePath),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", errBody))
		return nil, fmt.Errorf("download %s: %w", resourcePath, ErrAbsent)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "pod storage response unreadable")
	}
	return content, nil
}

// GrantAccess posts a read grant for identityURL on the given resource
// path. Fire and forget: a non-2xx status is logged, not returned, to
// match the platform's best-effort grant semantics.
func (c *Client) GrantAccess(ctx context.Context, baseURL, resourcePath, identityURL, token string) error {
	endpoint := baseURL + "/api/access/read/" + resourcePath + "/" + url.PathEscape(identityURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		bytes.NewReader([]byte(`{"read":true}`)))
	if err != nil {
		return fmt.Errorf("build grant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Cookie", token)

	resp, err := c.do(req)
	if err != nil {
		return apperrors.UpstreamError(err, "pod storage unreachable")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))

	c.logger.Info("Access grant posted",
		zap.String("path", resourcePath),
		zap.String("identity", identityURL),
		zap.Int("status", resp.StatusCode))
	return nil
}

// ResolveResourceURL returns the public URL of a stored resource.
func (c *Client) ResolveResourceURL(ctx context.Context, baseURL, pod, resourceID, token string) (string, error) {
	endpoint := baseURL + "/api/resources/" + pod + "/" + resourceID + "/url"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build resolve request: %w", err)
	}
	req.Header.Set("Cookie", token)

	resp, err := c.do(req)
	if err != nil {
		return "", apperrors.UpstreamError(err, "pod storage unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.UpstreamError(
			fmt.Errorf("resolve url returned status %d", resp.StatusCode),
			"resource url unavailable")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.UpstreamError(err, "resource url unreadable")
	}
	return strings.TrimSpace(string(raw)), nil
}
