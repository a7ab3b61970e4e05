package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/upro/upro-api/internal/pkg/imaging"
	"github.com/upro/upro-api/internal/pkg/storage"
)

// ImageProcessor produces the display and thumbnail variants of an upload
type ImageProcessor interface {
	Process(data []byte) (*imaging.ProcessedImage, error)
}

// Service handles catalog business logic
type Service struct {
	repo         Repository
	cache        Cache
	storage      storage.Storage
	processor    ImageProcessor
	maxImageSize int64
}

// NewService creates catalog service. store may be nil when object storage is
// not configured; image uploads then fail with ErrImagesDisabled.
func NewService(repo Repository, cache Cache, store storage.Storage, processor ImageProcessor, maxImageSize int64) *Service {
	return &Service{
		repo:         repo,
		cache:        cache,
		storage:      store,
		processor:    processor,
		maxImageSize: maxImageSize,
	}
}

// ListActive returns every active item in ascending id order
func (s *Service) ListActive(ctx context.Context) ([]*Item, error) {
	if items, ok := s.cache.GetActive(ctx); ok {
		return items, nil
	}
	return s.RefreshCache(ctx)
}

// RefreshCache reloads the active listing from the database into the cache
func (s *Service) RefreshCache(ctx context.Context) ([]*Item, error) {
	version := s.cache.Version(ctx)
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetActive(ctx, version, items)
	return items, nil
}

// Get returns one item, active or not, straight from the database
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an item. Items are active unless the request says otherwise.
func (s *Service) Create(ctx context.Context, req *CreateItemRequest) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		BonusAmount: req.BonusAmount,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if item.GivesFreeGold() {
		return nil, ErrBonusWithoutPrice
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	log.Info().Int64("item_id", item.ID).Int64("price", item.Price).Int64("bonus", item.BonusAmount).Msg("catalog item created")
	return item, nil
}

// Update applies the non-nil fields of req
func (s *Service) Update(ctx context.Context, id int64, req *UpdateItemRequest) (*Item, error) {
	if req.empty() {
		return nil, ErrNoChanges
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.BonusAmount != nil {
		item.BonusAmount = *req.BonusAmount
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if item.GivesFreeGold() {
		return nil, ErrBonusWithoutPrice
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)

	log.Info().Int64("item_id", item.ID).Bool("active", item.IsActive).Msg("catalog item updated")
	return item, nil
}

// UploadImage validates, resizes and stores an item image and its thumbnail
func (s *Service) UploadImage(ctx context.Context, id int64, file io.Reader) (*Item, error) {
	if s.storage == nil {
		return nil, ErrImagesDisabled
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	data, _, err := storage.ValidateFile(file, storage.ImageMimeTypes, s.maxImageSize)
	if err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	ext := storage.GetExtensionForMime(processed.ContentType)
	base := fmt.Sprintf("catalog/%d/%s", id, uuid.New().String())
	displayKey := base + ext
	thumbKey := base + "_thumb" + ext

	if err := s.storage.Put(ctx, displayKey, bytes.NewReader(processed.Display), processed.ContentType); err != nil {
		return nil, err
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		s.removeObjects(ctx, displayKey)
		return nil, err
	}

	if err := s.repo.SetImages(ctx, id, s.storage.GetURL(displayKey), s.storage.GetURL(thumbKey)); err != nil {
		s.removeObjects(ctx, displayKey, thumbKey)
		return nil, err
	}
	s.cache.Invalidate(ctx)

	log.Info().Int64("item_id", id).Str("key", displayKey).Int("width", processed.Width).Msg("catalog image uploaded")
	return s.repo.GetByID(ctx, id)
}

func (s *Service) removeObjects(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to remove orphaned catalog image")
		}
	}
}
