// Package input reads command arguments that need more than a flag parse:
// due dates and files to upload.
package input

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/errors"
)

// MaxUploadBytes is the largest file the CLI will upload.
const MaxUploadBytes = 32 << 20

var dueDateLayouts = []string{time.DateOnly, constants.SheetDateLayout}

// ParseDueDate reads a YYYY-MM-DD or DD/MM/YYYY date in loc. Blank input is
// the zero time.
func ParseDueDate(field, s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError(field, s, "must be YYYY-MM-DD or DD/MM/YYYY")
}

// ReadUpload loads a file for upload. The MIME type comes from the
// extension, or from the content when the extension is unknown.
func ReadUpload(path string) (*sheets.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	if info.IsDir() {
		return nil, errors.NewValidationError("file", path, "is a directory")
	}
	if info.Size() > MaxUploadBytes {
		return nil, errors.NewValidationError("file", path, "is larger than 32 MB")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if len(data) == 0 {
		return nil, errors.NewValidationError("file", path, "is empty")
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return &sheets.Upload{
		FileName: filepath.Base(path),
		MimeType: mimeType,
		Data:     data,
	}, nil
}
