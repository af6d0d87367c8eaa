package encryptor

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	rsaKeyBits     = 2048
	privateKeyFile = "private.pem"
	publicKeyFile  = "public.pem"
)

// ensureKeyPair returns the persisted public key PEM, generating and
// persisting a fresh RSA-2048 pair on first use. Existence check is not
// guarded against a first-time race; worst case the pair is regenerated
// once before any key was handed out.
func (c *Client) ensureKeyPair() (string, error) {
	pubPath := filepath.Join(c.cfg.RSAKeyDir, publicKeyFile)

	if existing, err := os.ReadFile(pubPath); err == nil {
		return string(existing), nil
	}

	if err := os.MkdirAll(c.cfg.RSAKeyDir, 0o700); err != nil {
		return "", fmt.Errorf("create key dir: %w", err)
	}

	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return "", fmt.Errorf("generate rsa keypair: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(filepath.Join(c.cfg.RSAKeyDir, privateKeyFile), privPEM, 0o600); err != nil {
		return "", fmt.Errorf("persist private key: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("encode public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return "", fmt.Errorf("persist public key: %w", err)
	}

	c.logger.Info("Generated RSA wrapping keypair", zap.String("path", c.cfg.RSAKeyDir))

	return string(pubPEM), nil
}
