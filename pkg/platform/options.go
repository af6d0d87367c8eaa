package platform

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type settings struct {
	logger     *zap.Logger
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures the platform client.
type Option func(*settings)

// WithLogger sets a custom logger for the client.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithTimeout bounds each request when no custom HTTP client is set.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop(), timeout: 30 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
