package indexer

import (
	"errors"
	"time"
)

// Config carries the connection settings of the local indexing service.
type Config struct {
	// BaseURL is the indexing service endpoint.
	BaseURL string
	// Timeout bounds each request when no custom HTTP client is set.
	// Indexing calls are slow; the zero value selects a generous default.
	Timeout time.Duration
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return errors.New("indexer base url is required")
	}
	return nil
}
