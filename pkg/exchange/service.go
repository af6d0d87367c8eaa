package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
	"github.com/tensor-horizon/evidence-exchange/pkg/bundle"
	"github.com/tensor-horizon/evidence-exchange/pkg/cms"
	"github.com/tensor-horizon/evidence-exchange/pkg/indexer"
	"github.com/tensor-horizon/evidence-exchange/pkg/participant"
	"github.com/tensor-horizon/evidence-exchange/pkg/platform"
	"github.com/tensor-horizon/evidence-exchange/pkg/solid"
)

const (
	// bundleSuffix names the plaintext container; the stored ciphertext
	// adds ".enc".
	bundleSuffix = ".zip"

	accessTypeRead = "read"

	requestContainer = "dsp_requests"
	profileContainer = "suspects"
)

// Encryptor is the encryption gateway surface the orchestrator needs.
type Encryptor interface {
	Encrypt(ctx context.Context, payload []byte, fileName, ownerID string) ([]byte, error)
	Decrypt(ctx context.Context, payload []byte, fileName, ownerID string) ([]byte, error)
	WrapKey(ctx context.Context, fileName string) (string, error)
}

// Storage is the pod storage surface the orchestrator needs.
type Storage interface {
	Upload(ctx context.Context, baseURL, resourcePath, index, fileName string, content []byte, token string) error
	Download(ctx context.Context, baseURL, resourcePath, token string) ([]byte, error)
	GrantAccess(ctx context.Context, baseURL, resourcePath, identityURL, token string) error
	ResolveResourceURL(ctx context.Context, baseURL, pod, resourceID, token string) (string, error)
	ListContainer(ctx context.Context, baseURL, containerPath, token string) (*solid.Listing, error)
}

// Platform is the sharing-platform envelope surface the orchestrator needs.
type Platform interface {
	SubmitRequest(ctx context.Context, baseURL string, sub platform.RequestSubmission, token string) (platform.Envelope, error)
	SubmitResponse(ctx context.Context, baseURL string, sub platform.ResponseSubmission, token string) (platform.Envelope, error)
	GetRequest(ctx context.Context, baseURL string, requestID int64, token string) (platform.Envelope, error)
}

// CaseNotifier delivers merged request/response pairs to case management.
type CaseNotifier interface {
	Notify(ctx context.Context, endpoint string, update cms.CaseUpdate) error
}

// Indexer is the local indexing surface the orchestrator needs.
type Indexer interface {
	Index(ctx context.Context, entry indexer.Entry) error
	HashForSearch(ctx context.Context, query indexer.HashQuery, from, to string) (indexer.Hash, error)
	SearchMatches(ctx context.Context, hash indexer.Hash) ([]indexer.Match, error)
}

// Store persists exchange records. Writes are best effort: the
// orchestrator logs store failures and carries on, so an unavailable
// store never fails an exchange step.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	FindByRequestID(ctx context.Context, requestID int64) (*Record, error)
}

// Service is the exchange orchestrator interface.
type Service interface {
	CreateAccessRequest(ctx context.Context, in CreateRequestInput, token string) (platform.Envelope, error)
	CreateAccessResponse(ctx context.Context, in CreateResponseInput, token string) (platform.Envelope, error)
	GetProfile(ctx context.Context, profileID, providerID, token string) (*bundle.Bundle, error)
	GetEvidence(ctx context.Context, profileID, requestorID, token string) (*bundle.Evidence, error)
	IndexProfile(ctx context.Context, in IndexProfileInput) error
	MatchLocal(ctx context.Context, query MatchQuery) ([]indexer.Match, error)
	Participants(ctx context.Context) []ParticipantSummary
}

type exchangeService struct {
	platformBaseURL string
	directory       *participant.Directory
	codec           *bundle.Codec
	encryptor       Encryptor
	storage         Storage
	platform        Platform
	notifier        CaseNotifier
	indexer         Indexer
	throttle        *indexer.Throttle
	store           Store
	selfID          string
	grantDuration   int
	logger          *zap.Logger
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Directory *participant.Directory
	Codec     *bundle.Codec
	Encryptor Encryptor
	Storage   Storage
	Platform  Platform
	Notifier  CaseNotifier
	Indexer   Indexer
	Throttle  *indexer.Throttle
	Store     Store // optional
	// PlatformBaseURL overrides the directory-registered platform
	// endpoint of the self participant when set.
	PlatformBaseURL string
}

// New creates the exchange orchestrator. SelfID must resolve in the
// directory; all storage calls go through this participant's own
// platform endpoint.
func New(deps Deps, selfID string, grantDuration int, logger *zap.Logger) (Service, error) {
	if deps.Directory == nil || deps.Codec == nil || deps.Encryptor == nil ||
		deps.Storage == nil || deps.Platform == nil {
		return nil, apperrors.BadRequestError(nil, "missing exchange service dependency")
	}
	if _, ok := deps.Directory.ByID(selfID); !ok {
		return nil, apperrors.BadRequestError(
			fmt.Errorf("participant %q not registered", selfID), "unknown self participant")
	}
	if grantDuration <= 0 {
		return nil, apperrors.BadRequestError(nil, "grant duration must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &exchangeService{
		platformBaseURL: deps.PlatformBaseURL,
		directory:       deps.Directory,
		codec:           deps.Codec,
		encryptor:       deps.Encryptor,
		storage:         deps.Storage,
		platform:        deps.Platform,
		notifier:        deps.Notifier,
		indexer:         deps.Indexer,
		throttle:        deps.Throttle,
		store:           deps.Store,
		selfID:          selfID,
		grantDuration:   grantDuration,
		logger:          logger,
	}, nil
}

// platformBase is the node's own platform endpoint. Resource paths
// select the pod, so every storage call goes through this base.
func (s *exchangeService) platformBase() (string, error) {
	if s.platformBaseURL != "" {
		return s.platformBaseURL, nil
	}
	base, ok := s.directory.PlatformEndpointOf(s.selfID)
	if !ok || base == "" {
		return "", apperrors.GeneralError(fmt.Errorf("no platform endpoint for %q", s.selfID))
	}
	return base, nil
}

func (s *exchangeService) CreateAccessRequest(ctx context.Context, in CreateRequestInput, token string) (platform.Envelope, error) {
	consumer, ok := s.directory.ByID(in.ConsumerID)
	if !ok {
		return nil, apperrors.BadRequestError(nil, "unknown consumer participant")
	}
	provider, ok := s.directory.ByID(in.ProviderID)
	if !ok {
		return nil, apperrors.BadRequestError(nil, "unknown provider participant")
	}
	if in.ProfileID == "" {
		return nil, apperrors.BadRequestError(nil, "profile id is required")
	}
	base, err := s.platformBase()
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:         uuid.NewString(),
		ProfileID:  in.ProfileID,
		ConsumerID: in.ConsumerID,
		ProviderID: in.ProviderID,
		Status:     StatusCreated,
		CreatedAt:  time.Now().UTC(),
	}
	s.persistInsert(ctx, rec)

	// Unpredictable name: a collision would overwrite another
	// exchange's ciphertext.
	fileName := uuid.NewString() + bundleSuffix
	cipherName := fileName + ".enc"
	rec.BundleFile = cipherName

	packed, err := s.codec.Pack(bundle.NewCaseText(in.CaseText), in.Artifacts)
	if err != nil {
		return nil, s.fail(ctx, rec, apperrors.GeneralError(err))
	}
	s.advance(ctx, rec, StatusPacked)

	ciphertext, err := s.encryptor.Encrypt(ctx, packed, fileName, in.ConsumerID)
	if err != nil {
		return nil, s.fail(ctx, rec, err)
	}
	s.advance(ctx, rec, StatusEncrypted)

	key, err := s.encryptor.WrapKey(ctx, fileName)
	if err != nil {
		return nil, s.fail(ctx, rec, err)
	}
	s.advance(ctx, rec, StatusKeyWrapped)

	env, err := s.platform.SubmitRequest(ctx, base, platform.RequestSubmission{
		RecipientWebID: solid.WebID(provider.StorageEndpoint, provider.Pod),
		ResourceIndex:  in.ProfileID,
		Duration:       s.grantDuration,
		AccessType:     accessTypeRead,
		EncryptionKey:  key,
		Scores:         in.Scores,
	}, token)
	if err != nil {
		return nil, s.fail(ctx, rec, err)
	}
	rec.RequestID = envelopeID(env)
	s.advance(ctx, rec, StatusSubmitted)

	uploadPath := solid.EncodePath(consumer.Pod, requestContainer, in.ProfileID)
	if err := s.storage.Upload(ctx, base, uploadPath, in.ProfileID, cipherName, ciphertext, token); err != nil {
		return nil, s.fail(ctx, rec, err)
	}
	s.advance(ctx, rec, StatusUploaded)

	grantPath := consumer.Pod + "%2F" + requestContainer + "%2F" + in.ProfileID + "%2F" + cipherName
	providerWebID := solid.WebID(provider.StorageEndpoint, provider.Pod)
	if err := s.storage.GrantAccess(ctx, base, grantPath, providerWebID, token); err != nil {
		// Ciphertext is stored but the provider cannot read it. This
		// must stay distinguishable from a from-scratch failure.
		s.advance(ctx, rec, StatusPartiallySubmitted)
		rec.Note = err.Error()
		s.persistUpdate(ctx, rec)
		return nil, apperrors.PartialSubmissionError(err, "ciphertext uploaded but access grant failed")
	}
	s.advance(ctx, rec, StatusAccessGranted)
	s.advance(ctx, rec, StatusAwaitingResponse)

	return env, nil
}

func (s *exchangeService) CreateAccessResponse(ctx context.Context, in CreateResponseInput, token string) (platform.Envelope, error) {
	consumer, ok := s.directory.ByID(in.ConsumerID)
	if !ok {
		return nil, apperrors.BadRequestError(nil, "unknown consumer participant")
	}
	provider, ok := s.directory.ByID(in.ProviderID)
	if !ok {
		return nil, apperrors.BadRequestError(nil, "unknown provider participant")
	}
	if in.RequestID == 0 || in.ProfileID == "" {
		return nil, apperrors.BadRequestError(nil, "request id and profile id are required")
	}
	base, err := s.platformBase()
	if err != nil {
		return nil, err
	}

	resourceURL, err := s.storage.ResolveResourceURL(ctx, base, provider.Pod, in.ProfileID, token)
	if err != nil {
		return nil, err
	}

	grantPath := solid.EncodePath(provider.Pod, in.ProfileID)
	consumerWebID := solid.WebID(consumer.StorageEndpoint, consumer.Pod)
	if err := s.storage.GrantAccess(ctx, base, grantPath, consumerWebID, token); err != nil {
		return nil, err
	}

	// Duration is always the configured constant; any duration on the
	// inbound payload is ignored.
	env, err := s.platform.SubmitResponse(ctx, base, platform.ResponseSubmission{
		RequestID:        in.RequestID,
		RecipientAddress: provider.BlockchainAddress,
		ResourceURL:      resourceURL,
		Duration:         s.grantDuration,
		AccessType:       accessTypeRead,
		ResponseType:     in.ResponseType,
		Terms:            in.Terms,
	}, token)
	if err != nil {
		return nil, err
	}

	s.markResponded(ctx, in.RequestID)
	s.notifyCaseManagement(ctx, base, consumer, in.RequestID, env, token)

	return env, nil
}

// notifyCaseManagement fetches the original request and delivers the
// merged pair to the consumer's CMS. Best effort: the response is
// already recorded, so notification failure is logged, not returned.
func (s *exchangeService) notifyCaseManagement(ctx context.Context, base string, consumer participant.Participant, requestID int64, response platform.Envelope, token string) {
	if s.notifier == nil || consumer.CMSEndpoint == "" {
		return
	}
	request, err := s.platform.GetRequest(ctx, base, requestID, token)
	if err != nil {
		s.logger.Warn("Could not fetch request for case notification",
			zap.Int64("request_id", requestID), zap.Error(err))
		return
	}
	update := cms.CaseUpdate{Request: request, Response: response}
	if err := s.notifier.Notify(ctx, consumer.CMSEndpoint, update); err != nil {
		s.logger.Warn("Case management notification failed",
			zap.String("endpoint", consumer.CMSEndpoint), zap.Error(err))
	}
}

func (s *exchangeService) GetProfile(ctx context.Context, profileID, providerID, token string) (*bundle.Bundle, error) {
	if profileID == "" {
		return nil, apperrors.BadRequestError(nil, "profile id is required")
	}
	pod, ok := s.directory.PodOf(providerID)
	if !ok {
		return nil, apperrors.BadRequestError(nil, "unknown provider participant")
	}
	base, err := s.platformBase()
	if err != nil {
		return nil, err
	}

	cipherName := profileID + solid.CiphertextSuffix
	resourcePath := pod + "%2F" + profileContainer + "%2F" + cipherName
	ciphertext, err := s.storage.Download(ctx, base, resourcePath, token)
	if err != nil {
		if errors.Is(err, solid.ErrAbsent) {
			return nil, apperrors.NotFoundError(err, "suspect profile not found")
		}
		return nil, err
	}

	plaintext, err := s.encryptor.Decrypt(ctx, ciphertext, cipherName, providerID)
	if err != nil {
		return nil, err
	}
	return s.codec.Unpack(plaintext)
}

func (s *exchangeService) GetEvidence(ctx context.Context, profileID, requestorID, token string) (*bundle.Evidence, error) {
	if profileID == "" {
		return nil, apperrors.BadRequestError(nil, "profile id is required")
	}
	pod, ok := s.directory.PodOf(requestorID)
	if !ok {
		return nil, apperrors.BadRequestError(nil, "unknown requestor participant")
	}
	base, err := s.platformBase()
	if err != nil {
		return nil, err
	}

	container := solid.EncodePath(pod, requestContainer, profileID)
	listing, err := s.storage.ListContainer(ctx, base, container, token)
	if err != nil {
		return nil, err
	}
	latest, ok := solid.LatestByModified(listing)
	if !ok {
		return nil, apperrors.NotFoundError(nil, "no evidence stored for profile")
	}

	ciphertext, err := s.storage.Download(ctx, base, container+latest, token)
	if err != nil {
		if errors.Is(err, solid.ErrAbsent) {
			// Absence after a granted request usually means the access
			// window elapsed.
			return nil, apperrors.NotAuthorizedError(err, "evidence no longer accessible")
		}
		return nil, err
	}

	plaintext, err := s.encryptor.Decrypt(ctx, ciphertext, latest, requestorID)
	if err != nil {
		return nil, err
	}
	return s.codec.UnpackLatest(plaintext)
}

func (s *exchangeService) IndexProfile(ctx context.Context, in IndexProfileInput) error {
	if s.indexer == nil || s.throttle == nil {
		return apperrors.GeneralError(fmt.Errorf("indexing not configured"))
	}
	if in.ProfileID == "" || in.OwnerID == "" {
		return apperrors.BadRequestError(nil, "owner id and profile id are required")
	}
	if !bundle.IsZip(in.Container) {
		return apperrors.CorruptContainerError(nil, "profile container is not a zip archive")
	}

	unpacked, err := s.codec.Unpack(in.Container)
	if err != nil {
		return err
	}

	types := []struct {
		artifacts []bundle.Artifact
		kind      string
	}{
		{unpacked.Face, indexer.TypeImage},
		{unpacked.Fingerprint, indexer.TypeFingerprint},
		{unpacked.Voice, indexer.TypeVoice},
	}
	var failed int
	for _, group := range types {
		for _, art := range group.artifacts {
			entry := indexer.Entry{
				SuspectID:     in.ProfileID,
				BiometricType: group.kind,
				Content:       art.Content,
				Owner:         in.OwnerID,
				Sensitive:     in.Sensitive,
			}
			err := s.throttle.Do(ctx, func(ctx context.Context) error {
				return s.indexer.Index(ctx, entry)
			})
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				failed++
				s.logger.Warn("Sample indexing failed",
					zap.String("profile", in.ProfileID),
					zap.String("type", group.kind),
					zap.String("file", art.Filename),
					zap.Error(err))
			}
		}
	}
	if failed > 0 {
		return apperrors.UpstreamError(
			fmt.Errorf("%d samples failed to index", failed), "profile indexing incomplete")
	}
	return nil
}

func (s *exchangeService) MatchLocal(ctx context.Context, query MatchQuery) ([]indexer.Match, error) {
	if s.indexer == nil {
		return nil, apperrors.GeneralError(fmt.Errorf("indexing not configured"))
	}
	hash, err := s.indexer.HashForSearch(ctx, indexer.HashQuery{
		FaceURL:        query.FaceURL,
		FingerprintURL: query.FingerprintURL,
		VoiceURL:       query.VoiceURL,
	}, query.ConsumerID, query.ProviderID)
	if err != nil {
		return nil, err
	}
	return s.indexer.SearchMatches(ctx, hash)
}

func (s *exchangeService) Participants(context.Context) []ParticipantSummary {
	all := s.directory.All()
	summaries := make([]ParticipantSummary, 0, len(all))
	for _, p := range all {
		summaries = append(summaries, ParticipantSummary{ID: p.ID, Address: p.Address, Pod: p.Pod})
	}
	return summaries
}

// envelopeID pulls the platform-assigned id out of a request envelope.
// Zero when the platform did not echo one.
func envelopeID(env platform.Envelope) int64 {
	switch v := env["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		id, _ := v.Int64()
		return id
	default:
		return 0
	}
}

func (s *exchangeService) fail(ctx context.Context, rec *Record, err error) error {
	rec.Status = StatusFailed
	rec.Note = err.Error()
	s.persistUpdate(ctx, rec)
	return err
}

func (s *exchangeService) advance(ctx context.Context, rec *Record, status Status) {
	rec.Status = status
	s.persistUpdate(ctx, rec)
}

func (s *exchangeService) markResponded(ctx context.Context, requestID int64) {
	if s.store == nil {
		return
	}
	rec, err := s.store.FindByRequestID(ctx, requestID)
	if err != nil || rec == nil {
		return
	}
	rec.Status = StatusResponded
	s.persistUpdate(ctx, rec)
}

func (s *exchangeService) persistInsert(ctx context.Context, rec *Record) {
	if s.store == nil {
		return
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		s.logger.Warn("Exchange record insert failed", zap.String("id", rec.ID), zap.Error(err))
	}
}

func (s *exchangeService) persistUpdate(ctx context.Context, rec *Record) {
	if s.store == nil {
		return
	}
	rec.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, rec); err != nil {
		s.logger.Warn("Exchange record update failed", zap.String("id", rec.ID), zap.Error(err))
	}
}
