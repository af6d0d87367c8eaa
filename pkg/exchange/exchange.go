// Package exchange drives end-to-end evidence exchanges between
// participants: pack, encrypt, wrap a one-time key, submit the access
// request, upload the ciphertext and grant access; on the provider side
// grant back, record the response and notify case management.
package exchange

import (
	"time"

	"github.com/tensor-horizon/evidence-exchange/pkg/bundle"
	"github.com/tensor-horizon/evidence-exchange/pkg/platform"
)

// Status tracks one exchange through the request/response choreography.
type Status string

const (
	StatusCreated            Status = "CREATED"
	StatusPacked             Status = "PACKED"
	StatusEncrypted          Status = "ENCRYPTED"
	StatusKeyWrapped         Status = "KEY_WRAPPED"
	StatusSubmitted          Status = "SUBMITTED"
	StatusUploaded           Status = "UPLOADED"
	StatusAccessGranted      Status = "ACCESS_GRANTED"
	StatusAwaitingResponse   Status = "AWAITING_RESPONSE"
	StatusResponded          Status = "RESPONDED"
	StatusFailed             Status = "FAILED"
	StatusPartiallySubmitted Status = "PARTIALLY_SUBMITTED"
)

// Record is the persisted state of one exchange. RequestID stays zero
// until the sharing platform acknowledges the request.
type Record struct {
	ID         string
	RequestID  int64
	ProfileID  string
	ConsumerID string
	ProviderID string
	BundleFile string
	Status     Status
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateRequestInput carries everything needed to open an exchange as
// the consumer.
type CreateRequestInput struct {
	ConsumerID string
	ProviderID string
	ProfileID  string
	Scores     platform.Scores
	CaseText   string
	Artifacts  map[bundle.Category][]bundle.Artifact
}

// CreateResponseInput carries the provider's answer to an open request.
type CreateResponseInput struct {
	ConsumerID   string
	ProviderID   string
	RequestID    int64
	ProfileID    string
	ResponseType string
	Terms        string
}

// IndexProfileInput identifies a packed profile to push through the
// local indexing service.
type IndexProfileInput struct {
	OwnerID   string
	ProfileID string
	Container []byte
	Sensitive bool
}

// MatchQuery describes a local similarity search.
type MatchQuery struct {
	ProviderID     string
	ConsumerID     string
	FaceURL        string
	FingerprintURL string
	VoiceURL       string
}

// ParticipantSummary is the subset of directory data exposed to match
// bootstrapping.
type ParticipantSummary struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Pod     string `json:"pod"`
}
