package exchange

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tensor-horizon/evidence-exchange/internal/metrics"
	"github.com/tensor-horizon/evidence-exchange/pkg/bundle"
	"github.com/tensor-horizon/evidence-exchange/pkg/indexer"
	"github.com/tensor-horizon/evidence-exchange/pkg/platform"
)

const serviceName = "ExchangeService"

// logService wraps Service with automatic logging of all method calls.
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the exchange Service. It logs
// method entry/exit, duration and errors; payload bytes never reach the
// log.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{svc: svc, logger: logger}
}

func (ls *logService) CreateAccessRequest(ctx context.Context, in CreateRequestInput, token string) (env platform.Envelope, err error) {
	start := time.Now()
	ls.logger.Info("CreateAccessRequest started",
		zap.String("service", serviceName),
		zap.String("consumer", in.ConsumerID),
		zap.String("provider", in.ProviderID),
		zap.String("profile", in.ProfileID),
	)
	defer func() {
		ls.finish("CreateAccessRequest", start, err,
			zap.String("profile", in.ProfileID))
	}()
	return ls.svc.CreateAccessRequest(ctx, in, token)
}

func (ls *logService) CreateAccessResponse(ctx context.Context, in CreateResponseInput, token string) (env platform.Envelope, err error) {
	start := time.Now()
	ls.logger.Info("CreateAccessResponse started",
		zap.String("service", serviceName),
		zap.Int64("request_id", in.RequestID),
		zap.String("profile", in.ProfileID),
		zap.String("response_type", in.ResponseType),
	)
	defer func() {
		ls.finish("CreateAccessResponse", start, err,
			zap.Int64("request_id", in.RequestID))
	}()
	return ls.svc.CreateAccessResponse(ctx, in, token)
}

func (ls *logService) GetProfile(ctx context.Context, profileID, providerID, token string) (b *bundle.Bundle, err error) {
	start := time.Now()
	defer func() {
		ls.finish("GetProfile", start, err,
			zap.String("profile", profileID),
			zap.String("provider", providerID))
	}()
	return ls.svc.GetProfile(ctx, profileID, providerID, token)
}

func (ls *logService) GetEvidence(ctx context.Context, profileID, requestorID, token string) (ev *bundle.Evidence, err error) {
	start := time.Now()
	defer func() {
		ls.finish("GetEvidence", start, err,
			zap.String("profile", profileID),
			zap.String("requestor", requestorID))
	}()
	return ls.svc.GetEvidence(ctx, profileID, requestorID, token)
}

func (ls *logService) IndexProfile(ctx context.Context, in IndexProfileInput) (err error) {
	start := time.Now()
	ls.logger.Info("IndexProfile started",
		zap.String("service", serviceName),
		zap.String("profile", in.ProfileID),
		zap.String("owner", in.OwnerID),
		zap.Int("container_bytes", len(in.Container)),
	)
	defer func() {
		ls.finish("IndexProfile", start, err,
			zap.String("profile", in.ProfileID))
	}()
	return ls.svc.IndexProfile(ctx, in)
}

func (ls *logService) MatchLocal(ctx context.Context, query MatchQuery) (matches []indexer.Match, err error) {
	start := time.Now()
	defer func() {
		ls.finish("MatchLocal", start, err,
			zap.String("consumer", query.ConsumerID),
			zap.String("provider", query.ProviderID),
			zap.Int("matches", len(matches)))
	}()
	return ls.svc.MatchLocal(ctx, query)
}

func (ls *logService) Participants(ctx context.Context) []ParticipantSummary {
	return ls.svc.Participants(ctx)
}

func (ls *logService) finish(method string, start time.Time, err error, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	}
	base = append(base, fields...)
	if err != nil {
		metrics.ExchangesTotal.WithLabelValues(method, "error").Inc()
		base = append(base, zap.Error(err))
		ls.logger.Error(method+" failed", base...)
		return
	}
	metrics.ExchangesTotal.WithLabelValues(method, "ok").Inc()
	ls.logger.Info(method+" completed", base...)
}
