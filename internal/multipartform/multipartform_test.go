package multipartform

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"
)

func TestForm_WireFormat(t *testing.T) {
	f := New()
	if err := f.AddField("index", "suspect-42"); err != nil {
		t.Fatalf("AddField() failed: %v", err)
	}
	if err := f.AddFile("file", "bundle.zip.enc", []byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("AddFile() failed: %v", err)
	}

	body, err := f.Reader()
	if err != nil {
		t.Fatalf("Reader() failed: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(f.ContentType())
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("expected multipart/form-data, got %s", mediaType)
	}

	mr := multipart.NewReader(body, params["boundary"])

	p1, err := mr.NextPart()
	if err != nil {
		t.Fatalf("first part: %v", err)
	}
	if p1.FormName() != "index" {
		t.Fatalf("expected field index, got %s", p1.FormName())
	}
	v, _ := io.ReadAll(p1)
	if string(v) != "suspect-42" {
		t.Fatalf("expected suspect-42, got %s", v)
	}

	p2, err := mr.NextPart()
	if err != nil {
		t.Fatalf("second part: %v", err)
	}
	if p2.FormName() != "file" || p2.FileName() != "bundle.zip.enc" {
		t.Fatalf("unexpected file part: field=%s filename=%s", p2.FormName(), p2.FileName())
	}
	c, _ := io.ReadAll(p2)
	if !bytes.Equal(c, []byte{0x01, 0x02, 0x03}) {
		t.Fatal("file content differs")
	}

	if _, err := mr.NextPart(); err != io.EOF {
		t.Fatalf("expected EOF after last part, got %v", err)
	}
}

func TestForm_RejectsWritesAfterClose(t *testing.T) {
	f := New()
	if err := f.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := f.AddField("a", "b"); err == nil {
		t.Fatal("expected AddField after Close to fail")
	}
	if err := f.AddFile("a", "b", nil); err == nil {
		t.Fatal("expected AddFile after Close to fail")
	}
}
