// Package encryptor implements the client protocol to the external
// fuzzy-extractor encryption service: content encryption, decryption and
// one-time key wrapping.
package encryptor

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tensor-horizon/evidence-exchange/internal/metrics"
	"github.com/tensor-horizon/evidence-exchange/internal/multipartform"
	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
)

// Multipart field names expected by the encryption service. Encrypt and
// decrypt carry the reference image under different field names.
const (
	fieldEnrollImage   = "enroll_image"
	fieldVerifyImage   = "verify_image"
	fieldFileToEncrypt = "file_to_encrypt"
	fieldEncryptedFile = "encrypted_file"
)

// ReferenceResolver maps a participant id to its registered fuzzy-extractor
// reference image filename. Implemented by participant.Directory.
type ReferenceResolver interface {
	ReferenceImageOf(id string) (string, bool)
}

// Client talks to the external encryption service.
type Client struct {
	cfg        *Config
	references ReferenceResolver
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates an encryptor client.
func New(cfg *Config, references ReferenceResolver, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if references == nil {
		return nil, fmt.Errorf("nil reference resolver")
	}

	s := applyOptions(opts)
	httpClient := s.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		cfg:        cfg,
		references: references,
		httpClient: httpClient,
		logger:     s.logger,
	}, nil
}

// Encrypt sends payload to the encryption service keyed by the owner's
// reference image and returns the ciphertext.
func (c *Client) Encrypt(ctx context.Context, payload []byte, fileName, ownerID string) ([]byte, error) {
	return c.transform(ctx, "encrypt", fieldEnrollImage, fieldFileToEncrypt, payload, fileName, ownerID)
}

// Decrypt sends ciphertext to the encryption service keyed by the owner's
// reference image and returns the plaintext.
func (c *Client) Decrypt(ctx context.Context, payload []byte, fileName, ownerID string) ([]byte, error) {
	return c.transform(ctx, "decrypt", fieldVerifyImage, fieldEncryptedFile, payload, fileName, ownerID)
}

// transform implements the shared encrypt/decrypt protocol: one multipart
// request with the reference image and the payload, a mode query
// parameter, binary body response.
func (c *Client) transform(
	ctx context.Context,
	operation, imageField, payloadField string,
	payload []byte,
	fileName, ownerID string,
) ([]byte, error) {
	refName, refContent, err := c.loadReferenceImage(ownerID)
	if err != nil {
		return nil, err
	}

	form := multipartform.New()
	if err := form.AddFile(imageField, refName, refContent); err != nil {
		return nil, err
	}
	if err := form.AddFile(payloadField, fileName, payload); err != nil {
		return nil, err
	}
	body, err := form.Reader()
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s?mode=%s", c.cfg.BaseURL, operation, url.QueryEscape(c.cfg.Mode))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", form.ContentType())

	timer := prometheus.NewTimer(metrics.ExternalRequestDuration.WithLabelValues("encryptor"))
	resp, err := c.httpClient.Do(req)
	timer.ObserveDuration()
	if err != nil {
		return nil, apperrors.UpstreamError(err, "encryption service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		c.logger.Error("Encryption service returned non-200",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", errBody))
		return nil, apperrors.UpstreamError(
			fmt.Errorf("%s returned status %d", operation, resp.StatusCode),
			"encryption service error")
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "encryption service response unreadable")
	}

	c.logger.Debug("Encryption service call completed",
		zap.String("operation", operation),
		zap.String("file", fileName),
		zap.Int("size", len(out)))
	return out, nil
}

// WrapKey asks the encryption service for the AES content key of fileName,
// wrapped with this deployment's RSA public key, and returns it as a
// lowercase hex string with 0x prefix.
func (c *Client) WrapKey(ctx context.Context, fileName string) (string, error) {
	pubPEM, err := c.ensureKeyPair()
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/get-encrypted-key/%s?rsa_public_key=%s",
		c.cfg.BaseURL, url.PathEscape(fileName), encodePublicKeyParam(pubPEM))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build key request: %w", err)
	}

	timer := prometheus.NewTimer(metrics.ExternalRequestDuration.WithLabelValues("encryptor"))
	resp, err := c.httpClient.Do(req)
	timer.ObserveDuration()
	if err != nil {
		return "", apperrors.UpstreamError(err, "encryption service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.UpstreamError(
			fmt.Errorf("get-encrypted-key returned status %d", resp.StatusCode),
			"encryption key unavailable")
	}

	var payload struct {
		EncryptedKey string `json:"encrypted_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", apperrors.UpstreamError(err, "encryption key response unreadable")
	}
	if payload.EncryptedKey == "" {
		return "", apperrors.UpstreamError(nil, "encryption key missing in response")
	}

	raw, err := base64.StdEncoding.DecodeString(payload.EncryptedKey)
	if err != nil {
		return "", apperrors.UpstreamError(err, "encryption key not base64")
	}

	return "0x" + hex.EncodeToString(raw), nil
}

// encodePublicKeyParam URL-encodes the PEM the way the encryption service
// expects: '+' and newlines both arrive as encoded spaces.
func encodePublicKeyParam(pem string) string {
	enc := url.QueryEscape(pem)
	enc = strings.ReplaceAll(enc, "+", "%20")
	enc = strings.ReplaceAll(enc, "%0A", "%20")
	return enc
}

func (c *Client) loadReferenceImage(ownerID string) (string, []byte, error) {
	refName, ok := c.references.ReferenceImageOf(ownerID)
	if !ok {
		return "", nil, apperrors.NotFoundError(nil,
			fmt.Sprintf("no reference image registered for participant %s", ownerID))
	}

	content, err := os.ReadFile(filepath.Join(c.cfg.ResourceDir, refName))
	if err != nil {
		return "", nil, fmt.Errorf("load reference image %s: %w", refName, err)
	}
	return refName, content, nil
}
