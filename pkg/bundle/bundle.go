// Package bundle implements the ZIP-based biometric evidence container
// format shared between providers and consumers.
package bundle

import "encoding/json"

// Category identifies a biometric artifact class inside a bundle.
type Category string

const (
	CategoryFace        Category = "face"
	CategoryVoice       Category = "voice"
	CategoryFingerprint Category = "fingerprint"
)

// Archive path prefixes for each category. Fingerprint artifacts live
// under finger/ on the wire; the longer category name is local only.
const (
	prefixFace        = "face/"
	prefixVoice       = "voice/"
	prefixFingerprint = "finger/"
)

// Metadata entry paths. Provider-originated profiles carry info.json,
// consumer-originated evidence requests carry info/caseInfo.json. The
// schema difference is intentional; the two entries have distinct
// producers.
const (
	MetadataPathProfile  = "info.json"
	MetadataPathCaseInfo = "info/caseInfo.json"
)

// Artifact is one biometric sample inside a bundle.
type Artifact struct {
	Filename    string
	Content     []byte
	ContentType string
}

// CaseInfo is the metadata entry embedded in a packed bundle.
type CaseInfo struct {
	// Path selects the metadata entry location inside the archive.
	Path string
	// Data is the raw metadata JSON written at Path.
	Data json.RawMessage
}

// NewCaseText builds the consumer-side metadata entry carrying only the
// descriptive case text.
func NewCaseText(text string) CaseInfo {
	raw, _ := json.Marshal(map[string]string{"caseDescriptiveText": text})
	return CaseInfo{Path: MetadataPathCaseInfo, Data: raw}
}

// NewProfileInfo builds the provider-side metadata entry from raw profile JSON.
func NewProfileInfo(data json.RawMessage) CaseInfo {
	return CaseInfo{Path: MetadataPathProfile, Data: data}
}

// Bundle is the multi-artifact extraction result: every artifact of every
// category, used when a provider profile may contain many samples per type.
type Bundle struct {
	Face        []Artifact
	Voice       []Artifact
	Fingerprint []Artifact
	// Info is the raw metadata JSON found at either metadata path, nil
	// when the archive carried none.
	Info json.RawMessage
}

// Empty reports whether the bundle carries no artifacts and no metadata.
func (b *Bundle) Empty() bool {
	return len(b.Face) == 0 && len(b.Voice) == 0 && len(b.Fingerprint) == 0 && len(b.Info) == 0
}

// Artifacts returns the bundle contents keyed by category.
func (b *Bundle) Artifacts() map[Category][]Artifact {
	return map[Category][]Artifact{
		CategoryFace:        b.Face,
		CategoryVoice:       b.Voice,
		CategoryFingerprint: b.Fingerprint,
	}
}

// Evidence is the single-latest extraction result: at most one artifact per
// category plus the flattened descriptive text, used for evidence responses
// where only the most recent exchange matters.
type Evidence struct {
	Face        *Artifact
	Voice       *Artifact
	Fingerprint *Artifact
	CaseText    string
}

// Empty reports whether the evidence carries no artifacts and no case text.
func (e *Evidence) Empty() bool {
	return e.Face == nil && e.Voice == nil && e.Fingerprint == nil && e.CaseText == ""
}
