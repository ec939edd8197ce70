package models

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
)

type Attachment struct {
	ID       ID     `json:"id"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

type AttachmentKind string

const (
	KindImage    AttachmentKind = "image"
	KindAudio    AttachmentKind = "audio"
	KindDocument AttachmentKind = "document"
)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

var audioExtensions = map[string]bool{
	"mp3": true, "mpeg": true, "wav": true, "ogg": true,
}

// Kind classifies the attachment using the owning message's type first and
// the stored file type second. Anything unrecognised is a document.
func (a *Attachment) Kind(messageType string) AttachmentKind {
	ft := strings.ToLower(strings.TrimPrefix(a.FileType, "."))
	switch {
	case messageType == MessageTypeImage || imageExtensions[ft]:
		return KindImage
	case messageType == MessageTypeAudio || audioExtensions[ft]:
		return KindAudio
	}
	return KindDocument
}

// Name returns the explicit file name or the last path segment of the URL.
func (a *Attachment) Name() string {
	if a.FileName != "" {
		return a.FileName
	}
	u, err := url.Parse(a.FileURL)
	if err != nil {
		return "file"
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "file"
	}
	return base
}

var allowedUploadTypes = map[string]AttachmentKind{
	"image/jpeg":         KindImage,
	"image/png":          KindImage,
	"image/gif":          KindImage,
	"image/webp":         KindImage,
	"audio/mpeg":         KindAudio,
	"audio/wav":          KindAudio,
	"audio/ogg":          KindAudio,
	"application/pdf":    KindDocument,
	"application/msword": KindDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": KindDocument,
	"text/plain": KindDocument,
}

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file is too large")
)

// FileKind maps a MIME type to an attachment kind. ok is false for types
// that are not accepted for upload.
func FileKind(mimeType string) (AttachmentKind, bool) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	kind, ok := allowedUploadTypes[mt]
	return kind, ok
}

// ValidateUpload rejects files before any network call is made.
func ValidateUpload(name, mimeType string, size, maxSize int64) (AttachmentKind, error) {
	kind, ok := FileKind(mimeType)
	if !ok {
		return "", fmt.Errorf("%s (%s): %w", name, mimeType, ErrUnsupportedFileType)
	}
	if maxSize > 0 && size > maxSize {
		return "", fmt.Errorf("%s is %s, maximum is %s: %w",
			name, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(maxSize)), ErrFileTooLarge)
	}
	return kind, nil
}
