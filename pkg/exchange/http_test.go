package exchange_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
	"github.com/tensor-horizon/evidence-exchange/pkg/bundle"
	"github.com/tensor-horizon/evidence-exchange/pkg/exchange"
	"github.com/tensor-horizon/evidence-exchange/pkg/exchange/mocks"
	"github.com/tensor-horizon/evidence-exchange/pkg/platform"
)

func newExchangeTestServer(svc exchange.Service) http.Handler {
	r := chi.NewRouter()
	exchange.RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func decodeErrorBody(t *testing.T, body []byte) string {
	t.Helper()
	var got struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("failed to decode error JSON: %v", err)
	}
	return got.Message
}

func TestCreateResponseHTTP_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newExchangeTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/dsp/response", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if msg := decodeErrorBody(t, rec.Body.Bytes()); msg != "invalid JSON" {
		t.Fatalf("expected message %q, got %q", "invalid JSON", msg)
	}
}

func TestCreateResponseHTTP_PassesBodyAndSessionCookie(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		CreateAccessResponse(mock.Anything, exchange.CreateResponseInput{
			ConsumerID:   "nl",
			ProviderID:   "fr",
			RequestID:    7,
			ProfileID:    "suspect-42",
			ResponseType: "grant",
			Terms:        "standard terms",
		}, "session=abc").
		Return(platform.Envelope{"requestId": float64(7)}, nil)
	handler := newExchangeTestServer(svc)

	body := `{"providerId":"fr","consumerId":"nl","requestId":7,` +
		`"suspectProfileId":"suspect-42","responseType":"grant","tos":"standard terms"}`
	req := httptest.NewRequest(http.MethodPost, "/api/dsp/response", bytes.NewBufferString(body))
	req.Header.Set("Cookie", "session=abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if env["requestId"] != float64(7) {
		t.Fatalf("expected requestId 7, got %v", env["requestId"])
	}
}

func TestCreateRequestHTTP_Multipart(t *testing.T) {
	svc := mocks.NewService(t)

	var got exchange.CreateRequestInput
	svc.EXPECT().
		CreateAccessRequest(mock.Anything, mock.Anything, "session=abc").
		Run(func(_ context.Context, in exchange.CreateRequestInput, _ string) {
			got = in
		}).
		Return(platform.Envelope{"id": float64(12)}, nil)
	handler := newExchangeTestServer(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("consumerId", "nl")
	_ = mw.WriteField("providerId", "fr")
	_ = mw.WriteField("suspectProfileId", "suspect-42")
	_ = mw.WriteField("faceScore", "0.91")
	_ = mw.WriteField("voiceScore", "0.65")
	_ = mw.WriteField("descriptiveText", "case 55/2026")
	fw, err := mw.CreateFormFile("face", "mugshot.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/dsp/request", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Cookie", "session=abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if got.ConsumerID != "nl" || got.ProviderID != "fr" || got.ProfileID != "suspect-42" {
		t.Fatalf("unexpected parties in input: %+v", got)
	}
	if got.Scores.Face.String() != "0.91" || got.Scores.Voice.String() != "0.65" {
		t.Fatalf("unexpected scores: %v", got.Scores)
	}
	if !got.Scores.Fingerprint.IsZero() {
		t.Fatalf("expected zero fingerprint score, got %v", got.Scores.Fingerprint)
	}
	if got.CaseText != "case 55/2026" {
		t.Fatalf("unexpected case text %q", got.CaseText)
	}
	faces := got.Artifacts[bundle.CategoryFace]
	if len(faces) != 1 || faces[0].Filename != "mugshot.png" || string(faces[0].Content) != "png-bytes" {
		t.Fatalf("unexpected face artifacts: %+v", faces)
	}
	if _, ok := got.Artifacts[bundle.CategoryVoice]; ok {
		t.Fatal("expected no voice artifacts")
	}
}

func TestCreateRequestHTTP_InvalidScore_ReturnsBadRequest(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newExchangeTestServer(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("faceScore", "not-a-number")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/dsp/request", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if msg := decodeErrorBody(t, rec.Body.Bytes()); msg != "invalid similarity score" {
		t.Fatalf("expected message %q, got %q", "invalid similarity score", msg)
	}
}

func TestGetProfileHTTP_MissingProvider_ReturnsBadRequest(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newExchangeTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/suspect-42", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGetProfileHTTP_ReturnsBundle(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		GetProfile(mock.Anything, "suspect-42", "fr", "").
		Return(&bundle.Bundle{
			Face: []bundle.Artifact{{Filename: "face-1.png", ContentType: "image/png", Content: []byte{1, 2, 3}}},
		}, nil)
	handler := newExchangeTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/suspect-42?providerId=fr", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var got struct {
		Face []struct {
			Filename    string `json:"filename"`
			ContentType string `json:"contentType"`
			Content     []byte `json:"content"`
		} `json:"face"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if len(got.Face) != 1 || got.Face[0].Filename != "face-1.png" {
		t.Fatalf("unexpected face artifacts: %+v", got.Face)
	}
	if !bytes.Equal(got.Face[0].Content, []byte{1, 2, 3}) {
		t.Fatalf("unexpected face content: %v", got.Face[0].Content)
	}
}

func TestGetEvidenceHTTP_NotFound(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		GetEvidence(mock.Anything, "suspect-42", "fr", "").
		Return(nil, apperrors.NotFoundError(nil, "no evidence stored for this profile"))
	handler := newExchangeTestServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/evidence/suspect-42?requestorId=fr", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	if msg := decodeErrorBody(t, rec.Body.Bytes()); msg != "no evidence stored for this profile" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestMatchInitHTTP_ListsParticipants(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		Participants(mock.Anything).
		Return([]exchange.ParticipantSummary{
			{ID: "nl", Address: "connector-nl:8449", Pod: "nl-pod"},
			{ID: "fr", Address: "connector-fr:8449", Pod: "fr-pod"},
		})
	handler := newExchangeTestServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/match/init", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got []exchange.ParticipantSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if len(got) != 2 || got[0].ID != "nl" || got[1].Pod != "fr-pod" {
		t.Fatalf("unexpected participants: %+v", got)
	}
}

func TestMatchLocalHTTP_PassesQuery(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		MatchLocal(mock.Anything, exchange.MatchQuery{
			ProviderID: "fr",
			ConsumerID: "nl",
			FaceURL:    "https://storage.example.org/sample-face.png",
		}).
		Return(nil, nil)
	handler := newExchangeTestServer(svc)

	body := `{"providerId":"fr","consumerId":"nl","sampleFaceUrl":"https://storage.example.org/sample-face.png"}`
	req := httptest.NewRequest(http.MethodPost, "/api/match/local", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestIndexProfileHTTP_Multipart(t *testing.T) {
	svc := mocks.NewService(t)

	var got exchange.IndexProfileInput
	svc.EXPECT().
		IndexProfile(mock.Anything, mock.Anything).
		Run(func(_ context.Context, in exchange.IndexProfileInput) {
			got = in
		}).
		Return(nil)
	handler := newExchangeTestServer(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("ownerId", "nl")
	_ = mw.WriteField("suspectProfileId", "suspect-42")
	_ = mw.WriteField("sensitive", "true")
	fw, err := mw.CreateFormFile("file", "suspect-42.zip")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("zip-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/index", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if got.OwnerID != "nl" || got.ProfileID != "suspect-42" || !got.Sensitive {
		t.Fatalf("unexpected input: %+v", got)
	}
	if string(got.Container) != "zip-bytes" {
		t.Fatalf("unexpected container content %q", got.Container)
	}
}

func TestIndexProfileHTTP_MissingFile_ReturnsBadRequest(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newExchangeTestServer(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("ownerId", "nl")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/index", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if msg := decodeErrorBody(t, rec.Body.Bytes()); msg != "profile container file is required" {
		t.Fatalf("unexpected message %q", msg)
	}
}
