package indexer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestClient_Index(t *testing.T) {
	var gotPath string
	var gotBody map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	entry := Entry{
		SuspectID:     "suspect-42",
		BiometricType: TypeImage,
		Content:       []byte{0xDE, 0xAD},
		Owner:         "fr",
		Sensitive:     true,
	}
	if err := newTestClient(t, srv.URL).Index(context.Background(), entry); err != nil {
		t.Fatalf("Index() failed: %v", err)
	}

	if gotPath != "/indexLocalData" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	wantData := `"` + base64.StdEncoding.EncodeToString(entry.Content) + `"`
	if string(gotBody["full_biometric_data_url"]) != wantData {
		t.Fatalf("content must travel base64-encoded, got %s", gotBody["full_biometric_data_url"])
	}
	if string(gotBody["biometric_type"]) != `"image"` || string(gotBody["sensitive"]) != "true" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestClient_HashForSearch(t *testing.T) {
	var gotBody map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calculateHashForSearching" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"image_hash": "abc"}`))
	}))
	defer srv.Close()

	query := HashQuery{FaceURL: "https://samples.example.org/face.png"}
	hash, err := newTestClient(t, srv.URL).HashForSearch(context.Background(), query, "fr", "nl")
	if err != nil {
		t.Fatalf("HashForSearch() failed: %v", err)
	}

	if string(gotBody["type"]) != `{"image":true,"fingerprint":false,"voice":false}` {
		t.Fatalf("modality flags must follow non-empty urls, got %s", gotBody["type"])
	}
	if hash["image_hash"] != "abc" {
		t.Fatalf("service hash lost: %v", hash)
	}
	if hash["from"] != "FR" || hash["to"] != "NL" {
		t.Fatalf("party ids must be uppercased: %v", hash)
	}
}

func TestClient_SearchMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/searchForMatches" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"suspect_id": "suspect-42", "score": 0.93}]`))
	}))
	defer srv.Close()

	matches, err := newTestClient(t, srv.URL).SearchMatches(context.Background(), Hash{"image_hash": "abc"})
	if err != nil {
		t.Fatalf("SearchMatches() failed: %v", err)
	}
	if len(matches) != 1 || matches[0]["suspect_id"] != "suspect-42" {
		t.Fatalf("unexpected matches: %v", matches)
	}
}

func TestClient_IndexNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL).Index(context.Background(), Entry{})
	if err == nil {
		t.Fatal("expected error on 503")
	}
	if !apperrors.Is(err, apperrors.CategoryUpstreamUnavailable) {
		t.Fatalf("expected CategoryUpstreamUnavailable, got %v", err)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error on empty base url")
	}
}
