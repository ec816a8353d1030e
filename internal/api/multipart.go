package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/me/examdesk/pkg/model"
)

// formFile is one file part of a multipart body.
type formFile struct {
	field string
	path  string
}

// multipartRequest builds a request whose body is a multipart form with
// the given text fields (in order) and files.
func multipartRequest(op, method, path string, fields [][2]string, files []formFile) (request, error) {
	req := request{op: op, method: method, path: path, auth: true}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return req, model.NewValidationError(op, fmt.Sprintf("write field %s: %v", f[0], err))
		}
	}
	for _, f := range files {
		if err := attachFile(mw, f); err != nil {
			return req, model.NewValidationError(op, err.Error())
		}
	}
	if err := mw.Close(); err != nil {
		return req, model.NewValidationError(op, fmt.Sprintf("close multipart body: %v", err))
	}

	req.body = &buf
	req.contentType = mw.FormDataContentType()
	return req, nil
}

func attachFile(mw *multipart.Writer, f formFile) error {
	src, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer src.Close()

	part, err := mw.CreateFormFile(f.field, filepath.Base(f.path))
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", f.path, err)
	}
	return nil
}
