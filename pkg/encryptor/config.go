package encryptor

import (
	"fmt"
	"time"
)

// Config holds the encryption-service client settings.
type Config struct {
	// BaseURL of the external encryption service.
	BaseURL string
	// Mode is passed through as the ?mode= query parameter.
	Mode string
	// ResourceDir holds the bundled fuzzy-extractor reference images.
	ResourceDir string
	// RSAKeyDir is a writable directory for the persisted wrapping keypair.
	RSAKeyDir string
	// Timeout bounds each request to the service.
	Timeout time.Duration
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("encryptor base url is required")
	}
	if c.ResourceDir == "" {
		return fmt.Errorf("encryptor resource dir is required")
	}
	if c.RSAKeyDir == "" {
		return fmt.Errorf("encryptor rsa key dir is required")
	}
	return nil
}
