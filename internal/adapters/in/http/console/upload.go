// internal/adapters/in/http/console/upload.go
package console

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"storefront/internal/domain/common"
)

// uploadField is the multipart field holding the image.
const uploadField = "file"

// maxUploadBytes leaves room for the multipart envelope around a 10 MiB image.
const maxUploadBytes = 11 << 20

type upload struct {
	file        multipart.File
	filename    string
	contentType string
}

// readUpload reads the first "file" part of a multipart/form-data body.
// The caller must close the returned file.
func readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", common.ErrInvalidInput, maxUploadBytes)
		}
		return nil, fmt.Errorf("%w: multipart form: %v", common.ErrInvalidInput, err)
	}
	f, hdr, err := r.FormFile(uploadField)
	if err != nil {
		return nil, fmt.Errorf("%w: form field %q is required", common.ErrInvalidInput, uploadField)
	}
	ct := strings.TrimSpace(hdr.Header.Get("Content-Type"))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &upload{file: f, filename: hdr.Filename, contentType: ct}, nil
}
