// Package multipartform builds multipart/form-data request bodies.
// Every upload path in the connector goes through this one writer so the
// wire format (boundary markers, field names, content-disposition) stays
// identical for all collaborating services.
package multipartform

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form accumulates multipart parts into an in-memory body.
type Form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	closed bool
}

// New creates an empty form.
func New() *Form {
	f := &Form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

// AddField appends a plain text form field.
func (f *Form) AddField(name, value string) error {
	if f.closed {
		return fmt.Errorf("form already finalized")
	}
	if err := f.writer.WriteField(name, value); err != nil {
		return fmt.Errorf("write form field %s: %w", name, err)
	}
	return nil
}

// AddFile appends a file part with the given field name and filename.
func (f *Form) AddFile(field, filename string, content []byte) error {
	if f.closed {
		return fmt.Errorf("form already finalized")
	}
	w, err := f.writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write form file %s: %w", field, err)
	}
	return nil
}

// Close finalizes the body with the closing boundary. The form cannot be
// extended afterwards.
func (f *Form) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if err := f.writer.Close(); err != nil {
		return fmt.Errorf("finalize form: %w", err)
	}
	return nil
}

// ContentType returns the multipart content type including the boundary.
func (f *Form) ContentType() string {
	return f.writer.FormDataContentType()
}

// Reader finalizes the form and returns the body reader.
func (f *Form) Reader() (io.Reader, error) {
	if err := f.Close(); err != nil {
		return nil, err
	}
	return bytes.NewReader(f.buf.Bytes()), nil
}
