package service

import (
	"context"
	"io"

	"github.com/hugohenrick/verduleria-api/internal/domain"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/storage"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
)

// Carpetas de imágenes admitidas
const (
	FolderVariants   = "variants"
	FolderPromotions = "promotions"
)

var ErrInvalidFolder = domain.NewValidation("INVALID_FOLDER", "carpeta de imágenes inválida")

// UploadService recibe imágenes y las deja listas para asignar a variantes o promociones
type UploadService interface {
	UploadImage(ctx context.Context, folder string, r io.Reader) (storage.StoredImage, error)
}

type uploadService struct {
	images ImageStore
	log    logger.Logger
}

// NewUploadService crea el servicio de subida de imágenes
func NewUploadService(images ImageStore, log logger.Logger) UploadService {
	return &uploadService{images: images, log: log}
}

func (s *uploadService) UploadImage(ctx context.Context, folder string, r io.Reader) (storage.StoredImage, error) {
	if folder == "" {
		folder = FolderVariants
	}
	if folder != FolderVariants && folder != FolderPromotions {
		return storage.StoredImage{}, ErrInvalidFolder
	}
	img, err := s.images.Save(ctx, folder, r)
	if err != nil {
		return storage.StoredImage{}, err
	}
	s.log.Info("imagen subida", "public_id", img.PublicID)
	return img, nil
}
