package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"inventario-backend/internal/domain"
	"inventario-backend/internal/media"
	"inventario-backend/internal/metrics"
	"inventario-backend/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrImageUpload signals a media store failure during create or update.
	// On create the partially-created record has already been rolled back.
	ErrImageUpload = errors.New("image upload failed")

	// ErrCategoryNameRequired signals a category filter call without a name.
	ErrCategoryNameRequired = errors.New("no category name was provided")
)

// ImageUpload carries an inbound image blob from a multipart request.
type ImageUpload struct {
	File     io.Reader
	Filename string
}

// CreateProductInput holds the fields for a new product. Category is the
// category name, resolved to its id before the insert.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       decimal.Decimal
	Category    string
}

// UpdateProductInput holds a partial update. Nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *decimal.Decimal
	Category    *string
}

// ProductService keeps a product record and its optional remote image
// consistent across create, update and delete.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput, image *ImageUpload) (*domain.Product, error)
	Update(ctx context.Context, id int64, input UpdateProductInput, image *ImageUpload) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, param string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	FilterByCategory(ctx context.Context, name string) ([]*domain.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	images       media.ImageStore
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	images media.ImageStore,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       images,
		logger:       logger,
	}
}

// Create persists the product record first, so the upload folder can embed
// the assigned id. If the upload fails the record is deleted again: a product
// must never reference an image that was not confirmed uploaded.
func (s *productService) Create(ctx context.Context, input CreateProductInput, image *ImageUpload) (*domain.Product, error) {
	category, err := s.categoryRepo.FindByName(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CategoryID:  category.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if image != nil {
		url, err := s.images.Upload(ctx, image.File, media.ProductFolder(product.ID, product.Name))
		metrics.ImageUploadsTotal.WithLabelValues(metrics.ResultLabel(err)).Inc()
		if err != nil {
			s.rollbackCreate(ctx, product.ID)
			return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
		}

		product.ImageURL = url
		if err := s.productRepo.Update(ctx, product); err != nil {
			// The blob is up but the record cannot reference it; undo both.
			s.destroyBestEffort(ctx, product.ImageURL)
			s.rollbackCreate(ctx, product.ID)
			return nil, fmt.Errorf("failed to save image URL: %w", err)
		}
	}

	metrics.ProductsCreatedTotal.WithLabelValues(strconv.FormatBool(image != nil)).Inc()
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Bool("with_image", image != nil),
	)

	return product, nil
}

// Update applies the provided fields and, when a new image is supplied,
// replaces the remote image: best-effort destroy of the old blob, upload of
// the new one, then a single save of all changed fields.
func (s *productService) Update(ctx context.Context, id int64, input UpdateProductInput, image *ImageUpload) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Category != nil {
		category, err := s.categoryRepo.FindByName(ctx, *input.Category)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
	}

	if image != nil {
		if product.ImageURL != "" {
			s.destroyBestEffort(ctx, product.ImageURL)
		}

		url, err := s.images.Upload(ctx, image.File, media.ProductFolder(product.ID, product.Name))
		metrics.ImageUploadsTotal.WithLabelValues(metrics.ResultLabel(err)).Inc()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
		}
		product.ImageURL = url
	}

	product.UpdatedAt = time.Now()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete destroys the remote image first, while its URL is still known, then
// removes the record. A media store outage never blocks the deletion.
func (s *productService) Delete(ctx context.Context, id int64) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if product.ImageURL != "" {
		s.destroyBestEffort(ctx, product.ImageURL)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
	)

	return nil
}

// Get retrieves a product by numeric id, falling back to a case-insensitive
// exact name match when the parameter is not a number.
func (s *productService) Get(ctx context.Context, param string) (*domain.Product, error) {
	if id, err := strconv.ParseInt(param, 10, 64); err == nil {
		return s.productRepo.FindByID(ctx, id)
	}
	return s.productRepo.FindByName(ctx, param)
}

// List retrieves all products.
func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.List(ctx)
}

// FilterByCategory resolves the category name case-insensitively and returns
// its products. An unknown name is a not-found condition; a known category
// with no products yields an empty list.
func (s *productService) FilterByCategory(ctx context.Context, name string) ([]*domain.Product, error) {
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	return s.productRepo.FindByCategory(ctx, category.ID)
}

// destroyBestEffort requests deletion of the blob behind the URL. Failures
// are logged and swallowed.
func (s *productService) destroyBestEffort(ctx context.Context, imageURL string) {
	publicID := media.PublicIDFromURL(imageURL)
	err := s.images.Destroy(ctx, publicID)
	metrics.ImageDestroysTotal.WithLabelValues(metrics.ResultLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("Failed to destroy remote image",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
	}
}

// rollbackCreate undoes a partially-created product after an upload failure.
func (s *productService) rollbackCreate(ctx context.Context, id int64) {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to roll back partially-created product",
			zap.Int64("product_id", id),
			zap.Error(err),
		)
	}
}
