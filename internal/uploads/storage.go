package uploads

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kartik-parmar007/marketplace-backend/pkg/config"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
	"github.com/kartik-parmar007/marketplace-backend/pkg/logger"
)

// URLPrefix is the public route prefix stored media is served under.
const URLPrefix = "/uploads"

var extensionByMimeType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Storage writes product media to local disk and hands back the public URL
// path the static file server exposes it under.
type Storage struct {
	dir      string
	maxBytes int64
	logg     *logger.Logger
}

// NewStorage prepares the upload directory and returns a disk-backed store.
func NewStorage(cfg config.MediaConfig, logg *logger.Logger) (*Storage, error) {
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		return nil, fmt.Errorf("upload directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Storage{dir: dir, maxBytes: cfg.MaxUploadBytes(), logg: logg}, nil
}

// Dir returns the on-disk directory the static file server should mount.
func (s *Storage) Dir() string {
	return s.dir
}

// Save validates and persists one uploaded image, returning its public path.
// The stored filename is a fresh UUID so client-supplied names never reach
// the filesystem.
func (s *Storage) Save(ctx context.Context, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image file required")
	}
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("image exceeds the %d MB upload limit", s.maxBytes/(1<<20)))
	}

	file, err := header.Open()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image unreadable")
	}
	defer file.Close()

	mimeType, err := sniffMimeType(file, header)
	if err != nil {
		return "", err
	}
	ext, ok := extensionByMimeType[mimeType]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported image type %q, use PNG, JPEG, WebP, or GIF", mimeType))
	}

	name := uuid.NewString() + ext
	dest, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "media: create file")
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		removeErr := os.Remove(dest.Name())
		if removeErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "file", name), "orphaned partial upload left on disk")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "media: write file")
	}
	return URLPrefix + "/" + name, nil
}

// Remove deletes a stored file by its public path. Unknown paths are ignored
// so delete stays idempotent.
func (s *Storage) Remove(publicPath string) error {
	name := strings.TrimPrefix(publicPath, URLPrefix+"/")
	if name == "" || name == publicPath || strings.Contains(name, "/") {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "media: remove file")
	}
	return nil
}

// sniffMimeType trusts content over the declared header: the first bytes are
// inspected and only fall back to the Content-Type header for types the
// sniffer cannot distinguish.
func sniffMimeType(file multipart.File, header *multipart.FileHeader) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image unreadable")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image unreadable")
	}

	detected := strings.ToLower(http.DetectContentType(buf[:n]))
	if mediaType, _, parseErr := mime.ParseMediaType(detected); parseErr == nil {
		detected = mediaType
	}
	if _, ok := extensionByMimeType[detected]; ok {
		return detected, nil
	}

	declared := strings.TrimSpace(header.Header.Get("Content-Type"))
	if declared != "" {
		if mediaType, _, parseErr := mime.ParseMediaType(declared); parseErr == nil {
			return strings.ToLower(mediaType), nil
		}
	}
	return detected, nil
}
