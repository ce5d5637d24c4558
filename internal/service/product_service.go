package service

import (
	"context"
	"strings"

	"cashier/internal/model"
	"cashier/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	limit, offset = clampPage(limit, offset)

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all products")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		s.logger.Warn().Int64("product_id", id).Msg("invalid product ID")
		return nil, &model.ProductNotFoundError{ProductID: id}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, err
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, &model.ProductNotFoundError{ProductID: id}
	}

	return product, nil
}

// Create adds a product to the catalogue.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("name", product.Name).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Int("stock", product.Stock).
		Msg("product created")

	return product, nil
}

// Update replaces the mutable fields of a product.
func (s *productService) Update(ctx context.Context, id int64, req *model.ProductRequest) (*model.Product, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	updated, err := s.productRepo.Update(ctx, id, product)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, err
	}

	if updated == nil {
		return nil, &model.ProductNotFoundError{ProductID: id}
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")

	return updated, nil
}

// Delete removes a product that no order references.
func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return err
	}

	s.logger.Info().Int64("product_id", id).Msg("product deleted")

	return nil
}

// productFromRequest validates a catalogue request and converts it.
func productFromRequest(req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("request", "must not be empty")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.NewValidationError("name", "is required")
	}

	if err := validateAmount("price", req.Price); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, model.NewValidationError("description", "is required")
	}

	if req.Stock == nil {
		return nil, model.NewValidationError("stock", "is required")
	}
	if *req.Stock < 0 {
		return nil, model.NewValidationError("stock", "must not be negative")
	}
	if *req.Stock > maxQuantity {
		return nil, model.NewValidationError("stock", "must not exceed %d", maxQuantity)
	}

	return &model.Product{
		Name:        name,
		Price:       req.Price,
		Description: description,
		Stock:       *req.Stock,
		ImageURL:    req.ImageURL,
	}, nil
}
