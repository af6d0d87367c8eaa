package exchange

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
	apphttp "github.com/tensor-horizon/evidence-exchange/pkg/app/http"
	"github.com/tensor-horizon/evidence-exchange/pkg/bundle"
	"github.com/tensor-horizon/evidence-exchange/pkg/platform"
)

// maxUploadBytes bounds multipart request bodies.
const maxUploadBytes = 256 << 20

// HTTP wraps the Service to provide the connector endpoints.
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the exchange endpoints on the given chi router.
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{service: service, logger: logger}

	r.Post("/api/dsp/request", apphttp.HandleError(h.createRequest))
	r.Post("/api/dsp/response", apphttp.HandleError(h.createResponse))
	r.Get("/api/profiles/{id}", apphttp.HandleError(h.getProfile))
	r.Get("/api/evidence/{id}", apphttp.HandleError(h.getEvidence))
	r.Post("/api/match/init", apphttp.HandleError(h.matchInit))
	r.Post("/api/match/local", apphttp.HandleError(h.matchLocal))
	r.Post("/api/index", apphttp.HandleError(h.indexProfile))
}

// sessionToken is the pod session cookie, passed through verbatim to
// every downstream call.
func sessionToken(r *http.Request) string {
	return r.Header.Get("Cookie")
}

type artifactDTO struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

type profileDTO struct {
	Face        []artifactDTO   `json:"face"`
	Voice       []artifactDTO   `json:"voice"`
	Fingerprint []artifactDTO   `json:"fingerprint"`
	Info        json.RawMessage `json:"info,omitempty"`
}

type evidenceDTO struct {
	Face        *artifactDTO `json:"face,omitempty"`
	Voice       *artifactDTO `json:"voice,omitempty"`
	Fingerprint *artifactDTO `json:"fingerprint,omitempty"`
	CaseText    string       `json:"descriptiveText,omitempty"`
}

func toArtifactDTOs(arts []bundle.Artifact) []artifactDTO {
	out := make([]artifactDTO, 0, len(arts))
	for _, a := range arts {
		out = append(out, artifactDTO{Filename: a.Filename, ContentType: a.ContentType, Content: a.Content})
	}
	return out
}

func toArtifactDTO(a *bundle.Artifact) *artifactDTO {
	if a == nil {
		return nil
	}
	return &artifactDTO{Filename: a.Filename, ContentType: a.ContentType, Content: a.Content}
}

func (h *HTTP) createRequest(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperrors.BadRequestError(err, "invalid multipart request")
	}

	scores, err := parseScores(r)
	if err != nil {
		return err
	}

	artifacts := map[bundle.Category][]bundle.Artifact{}
	for field, cat := range map[string]bundle.Category{
		"face":        bundle.CategoryFace,
		"voice":       bundle.CategoryVoice,
		"fingerprint": bundle.CategoryFingerprint,
	} {
		files, err := readFormFiles(r, field)
		if err != nil {
			return err
		}
		if len(files) > 0 {
			artifacts[cat] = files
		}
	}

	in := CreateRequestInput{
		ConsumerID: r.FormValue("consumerId"),
		ProviderID: r.FormValue("providerId"),
		ProfileID:  r.FormValue("suspectProfileId"),
		Scores:     scores,
		CaseText:   r.FormValue("descriptiveText"),
		Artifacts:  artifacts,
	}

	env, err := h.service.CreateAccessRequest(r.Context(), in, sessionToken(r))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, env)
}

type responseRequest struct {
	ProviderID   string `json:"providerId"`
	ConsumerID   string `json:"consumerId"`
	RequestID    int64  `json:"requestId"`
	ProfileID    string `json:"suspectProfileId"`
	ResponseType string `json:"responseType"`
	Terms        string `json:"tos"`
}

func (h *HTTP) createResponse(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	var req responseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	env, err := h.service.CreateAccessResponse(r.Context(), CreateResponseInput{
		ConsumerID:   req.ConsumerID,
		ProviderID:   req.ProviderID,
		RequestID:    req.RequestID,
		ProfileID:    req.ProfileID,
		ResponseType: req.ResponseType,
		Terms:        req.Terms,
	}, sessionToken(r))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, env)
}

func (h *HTTP) getProfile(w http.ResponseWriter, r *http.Request) error {
	profileID := chi.URLParam(r, "id")
	providerID := r.URL.Query().Get("providerId")
	if providerID == "" {
		return apperrors.BadRequestError(nil, "providerId query parameter is required")
	}

	b, err := h.service.GetProfile(r.Context(), profileID, providerID, sessionToken(r))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, profileDTO{
		Face:        toArtifactDTOs(b.Face),
		Voice:       toArtifactDTOs(b.Voice),
		Fingerprint: toArtifactDTOs(b.Fingerprint),
		Info:        b.Info,
	})
}

func (h *HTTP) getEvidence(w http.ResponseWriter, r *http.Request) error {
	profileID := chi.URLParam(r, "id")
	requestorID := r.URL.Query().Get("requestorId")
	if requestorID == "" {
		return apperrors.BadRequestError(nil, "requestorId query parameter is required")
	}

	ev, err := h.service.GetEvidence(r.Context(), profileID, requestorID, sessionToken(r))
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, evidenceDTO{
		Face:        toArtifactDTO(ev.Face),
		Voice:       toArtifactDTO(ev.Voice),
		Fingerprint: toArtifactDTO(ev.Fingerprint),
		CaseText:    ev.CaseText,
	})
}

func (h *HTTP) matchInit(w http.ResponseWriter, r *http.Request) error {
	return apphttp.WriteJSON(w, http.StatusOK, h.service.Participants(r.Context()))
}

type matchLocalRequest struct {
	ProviderID     string `json:"providerId"`
	ConsumerID     string `json:"consumerId"`
	FaceURL        string `json:"sampleFaceUrl"`
	FingerprintURL string `json:"sampleFingerprintUrl"`
	VoiceURL       string `json:"sampleVoiceUrl"`
}

func (h *HTTP) matchLocal(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	var req matchLocalRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	matches, err := h.service.MatchLocal(r.Context(), MatchQuery{
		ProviderID:     req.ProviderID,
		ConsumerID:     req.ConsumerID,
		FaceURL:        req.FaceURL,
		FingerprintURL: req.FingerprintURL,
		VoiceURL:       req.VoiceURL,
	})
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, matches)
}

func (h *HTTP) indexProfile(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperrors.BadRequestError(err, "invalid multipart request")
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return apperrors.BadRequestError(err, "profile container file is required")
	}
	defer file.Close()
	container, err := io.ReadAll(file)
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read container")
	}

	in := IndexProfileInput{
		OwnerID:   r.FormValue("ownerId"),
		ProfileID: r.FormValue("suspectProfileId"),
		Container: container,
		Sensitive: r.FormValue("sensitive") == "true",
	}
	if err := h.service.IndexProfile(r.Context(), in); err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "indexed"})
}

func parseScores(r *http.Request) (platform.Scores, error) {
	var scores platform.Scores
	for _, f := range []struct {
		field string
		dst   *decimal.Decimal
	}{
		{"faceScore", &scores.Face},
		{"fingerprintScore", &scores.Fingerprint},
		{"voiceScore", &scores.Voice},
	} {
		raw := r.FormValue(f.field)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return scores, apperrors.BadRequestError(err, "invalid similarity score")
		}
		*f.dst = d
	}
	return scores, nil
}

func readFormFiles(r *http.Request, field string) ([]bundle.Artifact, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	artifacts := make([]bundle.Artifact, 0, len(headers))
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			return nil, apperrors.BadRequestError(err, "failed to open uploaded file")
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperrors.BadRequestError(err, "failed to read uploaded file")
		}
		artifacts = append(artifacts, bundle.Artifact{
			Filename:    hdr.Filename,
			Content:     content,
			ContentType: hdr.Header.Get("Content-Type"),
		})
	}
	return artifacts, nil
}
