package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// zipSignature is the ZIP local-file-header magic. A decryption failure
// commonly yields an error payload instead of ciphertext, so the codec
// gates on it instead of letting archive/zip fail.
var zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}

const octetStream = "application/octet-stream"

// Codec packs and unpacks evidence bundles.
type Codec struct {
	logger *zap.Logger
}

// NewCodec creates a bundle codec.
func NewCodec(opts ...Option) *Codec {
	s := applyOptions(opts)
	return &Codec{logger: s.logger}
}

// IsZip reports whether data starts with the ZIP local-file-header signature.
func IsZip(data []byte) bool {
	return len(data) >= len(zipSignature) && bytes.Equal(data[:len(zipSignature)], zipSignature)
}

// Pack builds a ZIP archive with one entry per artifact at
// <category-prefix><filename> plus the metadata entry. Missing categories
// are omitted; artifacts with empty content are skipped so the archive
// never carries zero-byte entries.
func (c *Codec) Pack(info CaseInfo, artifacts map[Category][]Artifact) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if len(info.Data) > 0 {
		metaPath := info.Path
		if metaPath == "" {
			metaPath = MetadataPathCaseInfo
		}
		if err := writeEntry(zw, metaPath, info.Data); err != nil {
			return nil, err
		}
	}

	for _, cat := range []Category{CategoryFace, CategoryVoice, CategoryFingerprint} {
		prefix, _ := prefixFor(cat)
		for _, a := range artifacts[cat] {
			if len(a.Content) == 0 {
				c.logger.Warn("Skipping empty artifact",
					zap.String("category", string(cat)),
					zap.String("filename", a.Filename))
				continue
			}
			if err := writeEntry(zw, prefix+a.Filename, a.Content); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize bundle: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create bundle entry %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write bundle entry %s: %w", name, err)
	}
	return nil
}

func prefixFor(cat Category) (string, bool) {
	switch cat {
	case CategoryFace:
		return prefixFace, true
	case CategoryVoice:
		return prefixVoice, true
	case CategoryFingerprint:
		return prefixFingerprint, true
	}
	return "", false
}

// Unpack extracts every artifact of every category from data. A payload
// that fails the ZIP signature check yields an empty bundle, never an
// error: the caller still needs a displayable object.
func (c *Codec) Unpack(data []byte) (*Bundle, error) {
	out := &Bundle{}
	if !IsZip(data) {
		c.logger.Warn("Payload is not a ZIP archive, returning empty bundle",
			zap.Int("size", len(data)))
		return out, nil
	}

	err := c.walkEntries(data, func(name string, content []byte, meta bool) {
		if meta {
			out.Info = content
			return
		}
		a := c.newArtifact(name, content)
		switch {
		case strings.HasPrefix(name, prefixFace):
			out.Face = append(out.Face, a)
		case strings.HasPrefix(name, prefixVoice):
			out.Voice = append(out.Voice, a)
		case strings.HasPrefix(name, prefixFingerprint):
			out.Fingerprint = append(out.Fingerprint, a)
		default:
			// Unknown prefixes are dropped, not fatal
			c.logger.Warn("Dropping artifact with unknown category prefix",
				zap.String("entry", name))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnpackLatest extracts at most one artifact per category plus the
// flattened descriptive text. When an archive carries several samples of
// one category the last entry wins; evidence responses only carry one.
func (c *Codec) UnpackLatest(data []byte) (*Evidence, error) {
	out := &Evidence{}
	if !IsZip(data) {
		c.logger.Warn("Payload is not a ZIP archive, returning empty evidence",
			zap.Int("size", len(data)))
		return out, nil
	}

	err := c.walkEntries(data, func(name string, content []byte, meta bool) {
		if meta {
			out.CaseText = descriptiveText(content)
			return
		}
		a := c.newArtifact(name, content)
		switch {
		case strings.HasPrefix(name, prefixFace):
			out.Face = &a
		case strings.HasPrefix(name, prefixVoice):
			out.Voice = &a
		case strings.HasPrefix(name, prefixFingerprint):
			out.Fingerprint = &a
		default:
			c.logger.Warn("Dropping artifact with unknown category prefix",
				zap.String("entry", name))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// walkEntries iterates non-directory ZIP entries and hands each to visit.
// Zero-byte entries are skipped with a log line; they carry no evidence.
func (c *Codec) walkEntries(data []byte, visit func(name string, content []byte, meta bool)) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := f.Name

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open bundle entry %s: %w", name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("read bundle entry %s: %w", name, err)
		}

		if len(content) == 0 {
			c.logger.Debug("Skipping zero-byte bundle entry", zap.String("entry", name))
			continue
		}

		meta := name == MetadataPathProfile || name == MetadataPathCaseInfo
		visit(name, content, meta)
	}
	return nil
}

func (c *Codec) newArtifact(entryName string, content []byte) Artifact {
	return Artifact{
		Filename:    path.Base(entryName),
		Content:     content,
		ContentType: sniffContentType(entryName, content),
	}
}

// sniffContentType detects the content type from the bytes and falls back
// to the extension table when detection yields nothing specific.
func sniffContentType(name string, content []byte) string {
	if mt := mimetype.Detect(content); mt.String() != octetStream {
		return mt.String()
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".flac":
		return "audio/flac"
	case ".json":
		return "application/json"
	default:
		return octetStream
	}
}

// descriptiveText flattens the metadata JSON into the case text field.
// Both metadata schemas are accepted: the case-info entry carries
// caseDescriptiveText directly, the profile entry may nest it.
func descriptiveText(raw []byte) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	if s, ok := m["caseDescriptiveText"].(string); ok {
		return s
	}
	if s, ok := m["descriptiveText"].(string); ok {
		return s
	}
	return ""
}
