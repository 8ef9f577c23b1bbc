package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spareshop-api/utils/apperror"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ImageStore keeps uploaded sparepart images in a single directory.
type ImageStore struct {
	Dir      string
	MaxBytes int64
}

func NewImageStore(dir string, maxMB int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{Dir: dir, MaxBytes: maxMB << 20}, nil
}

// Save validates the file and stores it under a random name, returning that name.
func (s *ImageStore) Save(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", apperror.Validation("invalid image format, use JPG, JPEG, PNG or GIF")
	}
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", apperror.Validation("image too large, maximum is %dMB", s.MaxBytes>>20)
	}

	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(fh, filepath.Join(s.Dir, name)); err != nil {
		return "", apperror.Internal(err, "failed to store image")
	}
	return name, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *ImageStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
