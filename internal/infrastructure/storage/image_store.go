// Package storage guarda imágenes de variantes y promociones en disco.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/hugohenrick/verduleria-api/internal/domain"
)

const (
	maxSide     = 1200
	jpegQuality = 80
)

var (
	ErrImageTooLarge   = domain.NewValidation("IMAGE_TOO_LARGE", "la imagen supera el tamaño máximo permitido")
	ErrInvalidImage    = domain.NewValidation("INVALID_IMAGE", "el archivo no es una imagen válida")
	ErrInvalidPublicID = domain.NewValidation("INVALID_PUBLIC_ID", "identificador de imagen inválido")
)

// StoredImage es el resultado de guardar una imagen
type StoredImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// LocalImageStore escala las imágenes a JPEG y las sirve bajo publicURL
type LocalImageStore struct {
	dir       string
	publicURL string
	maxBytes  int64
}

// NewLocalImageStore crea el almacén sobre dir
func NewLocalImageStore(dir, publicURL string, maxBytes int64) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error al crear carpeta de imágenes: %w", err)
	}
	return &LocalImageStore{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
	}, nil
}

// Save decodifica, ajusta a maxSide y guarda la imagen dentro de folder
func (s *LocalImageStore) Save(ctx context.Context, folder string, r io.Reader) (StoredImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return StoredImage{}, fmt.Errorf("error al leer imagen: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return StoredImage{}, ErrImageTooLarge
	}
	if err := ctx.Err(); err != nil {
		return StoredImage{}, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return StoredImage{}, ErrInvalidImage.Wrap(err)
	}
	b := img.Bounds()
	if b.Dx() > maxSide || b.Dy() > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	publicID := path.Join(folder, uuid.New().String())
	full := filepath.Join(s.dir, filepath.FromSlash(publicID)+".jpg")
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return StoredImage{}, fmt.Errorf("error al crear carpeta de imágenes: %w", err)
	}
	if err := imaging.Save(img, full, imaging.JPEGQuality(jpegQuality)); err != nil {
		return StoredImage{}, fmt.Errorf("error al guardar imagen: %w", err)
	}

	return StoredImage{URL: s.publicURL + "/" + publicID + ".jpg", PublicID: publicID}, nil
}

// Delete borra la imagen. Borrar una imagen inexistente no es error.
func (s *LocalImageStore) Delete(_ context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	clean := path.Clean(publicID)
	if strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return ErrInvalidPublicID
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean)+".jpg"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error al borrar imagen: %w", err)
	}
	return nil
}
