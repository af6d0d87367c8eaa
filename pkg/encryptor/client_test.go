package encryptor

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
)

type staticResolver map[string]string

func (r staticResolver) ReferenceImageOf(id string) (string, bool) {
	name, ok := r[id]
	return name, ok
}

func setupClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	resourceDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(resourceDir, "owner-ref.png"), []byte("ref-bytes"), 0o600); err != nil {
		t.Fatalf("write reference image: %v", err)
	}

	c, err := New(&Config{
		BaseURL:     baseURL,
		Mode:        "fe",
		ResourceDir: resourceDir,
		RSAKeyDir:   t.TempDir(),
	}, staticResolver{"owner-1": "owner-ref.png"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestClient_EncryptDecryptProtocol(t *testing.T) {
	var gotPath, gotMode string
	var gotFields []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMode = r.URL.Query().Get("mode")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotFields = nil
		for field := range r.MultipartForm.File {
			gotFields = append(gotFields, field)
		}
		_, _ = w.Write([]byte("ciphertext"))
	}))
	defer srv.Close()

	c := setupClient(t, srv.URL)

	out, err := c.Encrypt(context.Background(), []byte("plaintext"), "bundle.zip", "owner-1")
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	if !bytes.Equal(out, []byte("ciphertext")) {
		t.Fatalf("unexpected ciphertext: %s", out)
	}
	if gotPath != "/encrypt" || gotMode != "fe" {
		t.Fatalf("unexpected request: path=%s mode=%s", gotPath, gotMode)
	}
	assertFields(t, gotFields, "enroll_image", "file_to_encrypt")

	if _, err := c.Decrypt(context.Background(), []byte("ciphertext"), "bundle.zip.enc", "owner-1"); err != nil {
		t.Fatalf("Decrypt() failed: %v", err)
	}
	if gotPath != "/decrypt" {
		t.Fatalf("expected /decrypt, got %s", gotPath)
	}
	assertFields(t, gotFields, "verify_image", "encrypted_file")
}

func assertFields(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected fields %v, got %v", want, got)
	}
	set := map[string]bool{}
	for _, f := range got {
		set[f] = true
	}
	for _, f := range want {
		if !set[f] {
			t.Fatalf("expected field %s in %v", f, got)
		}
	}
}

func TestClient_EncryptNon200IsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := setupClient(t, srv.URL)

	_, err := c.Encrypt(context.Background(), []byte("x"), "f", "owner-1")
	if err == nil {
		t.Fatal("expected error on non-200")
	}
	if !apperrors.Is(err, apperrors.CategoryUpstreamUnavailable) {
		t.Fatalf("expected CategoryUpstreamUnavailable, got %v", err)
	}
}

func TestClient_EncryptUnknownOwnerIsNotFound(t *testing.T) {
	c := setupClient(t, "http://127.0.0.1:0")

	_, err := c.Encrypt(context.Background(), []byte("x"), "f", "unknown")
	if err == nil {
		t.Fatal("expected error for unknown owner")
	}
	if !apperrors.Is(err, apperrors.CategoryNotFound) {
		t.Fatalf("expected CategoryNotFound, got %v", err)
	}
}

func TestClient_WrapKey(t *testing.T) {
	rawKey := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	var gotKeyParam string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/get-encrypted-key/") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotKeyParam = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"encrypted_key": "` + base64.StdEncoding.EncodeToString(rawKey) + `"}`))
	}))
	defer srv.Close()

	c := setupClient(t, srv.URL)

	key, err := c.WrapKey(context.Background(), "bundle.zip")
	if err != nil {
		t.Fatalf("WrapKey() failed: %v", err)
	}
	if key != "0xdeadbeef" {
		t.Fatalf("expected 0xdeadbeef, got %s", key)
	}

	// The PEM travels with '+' and newlines as encoded spaces
	if strings.Contains(gotKeyParam, "+") || strings.Contains(gotKeyParam, "%0A") {
		t.Fatalf("public key parameter not encoded as expected: %s", gotKeyParam)
	}

	// The persisted public key must be valid RSA-2048 PEM
	pubPEM, err := os.ReadFile(filepath.Join(c.cfg.RSAKeyDir, publicKeyFile))
	if err != nil {
		t.Fatalf("read persisted public key: %v", err)
	}
	block, _ := pem.Decode(pubPEM)
	if block == nil || block.Type != "PUBLIC KEY" {
		t.Fatal("persisted public key is not PEM")
	}
	if _, err := x509.ParsePKIXPublicKey(block.Bytes); err != nil {
		t.Fatalf("persisted public key unparsable: %v", err)
	}

	// Second call reuses the persisted pair
	before := string(pubPEM)
	if _, err := c.WrapKey(context.Background(), "bundle.zip"); err != nil {
		t.Fatalf("second WrapKey() failed: %v", err)
	}
	after, _ := os.ReadFile(filepath.Join(c.cfg.RSAKeyDir, publicKeyFile))
	if before != string(after) {
		t.Fatal("expected keypair to be generated once and reused")
	}
}

func TestClient_WrapKeyMissingKeyField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := setupClient(t, srv.URL)

	_, err := c.WrapKey(context.Background(), "bundle.zip")
	if err == nil {
		t.Fatal("expected error on empty encrypted_key")
	}
	if !apperrors.Is(err, apperrors.CategoryUpstreamUnavailable) {
		t.Fatalf("expected CategoryUpstreamUnavailable, got %v", err)
	}
}

func TestEncodePublicKeyParam(t *testing.T) {
	pem := "-----BEGIN PUBLIC KEY-----\nAB+CD\n-----END PUBLIC KEY-----\n"
	enc := encodePublicKeyParam(pem)

	if strings.Contains(enc, "+") {
		t.Fatalf("encoded PEM must not contain raw '+': %s", enc)
	}
	if strings.Contains(enc, "%0A") {
		t.Fatalf("encoded PEM must not contain encoded newlines: %s", enc)
	}

	// Decoding yields the PEM with newlines flattened to spaces; literal
	// '+' survives as %2B and decodes back to '+'
	decoded, err := url.QueryUnescape(enc)
	if err != nil {
		t.Fatalf("unescape failed: %v", err)
	}
	want := strings.ReplaceAll(pem, "\n", " ")
	if decoded != want {
		t.Fatalf("decoded %q, want %q", decoded, want)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(&Config{}, staticResolver{})
	if err == nil {
		t.Fatal("expected config validation to fail")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatal("unexpected error kind")
	}
}
