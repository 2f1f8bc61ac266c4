package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ProductPatch carries a partial product update. Nil fields are left
// untouched; the result is re-validated before persisting.
type ProductPatch struct {
	Name         *string
	Description  *string
	Price        *float64
	Category     *string
	Tags         []string
	Variants     []models.Variant
	Inventory    *models.Inventory
	CategoryData map[string]interface{}
	Image        *string
}

// ListProducts returns the catalog, optionally filtered by a search term
// (case-insensitive substring over name, description, category, tags).
func (s *ProductService) ListProducts(searchTerm string) ([]models.Product, error) {
	if searchTerm != "" {
		return s.repo.Search(searchTerm)
	}
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates and persists a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.repo.Create(product); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"product_id": product.ID, "category": product.Category}).Info("product created")
	return nil
}

// UpdateProduct applies a partial update and re-validates the result.
// Inventory is written as supplied; inStock is not recomputed here, only the
// order workflow keeps it in sync.
func (s *ProductService) UpdateProduct(id string, patch ProductPatch) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Tags != nil {
		product.Tags = patch.Tags
	}
	if patch.Variants != nil {
		product.Variants = patch.Variants
	}
	if patch.Inventory != nil {
		product.Inventory = *patch.Inventory
	}
	if patch.CategoryData != nil {
		product.CategoryData = patch.CategoryData
	}
	if patch.Image != nil {
		product.Image = *patch.Image
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product permanently. Existing orders keep their
// snapshots.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

func validateProduct(p *models.Product) error {
	if p.Name == "" || p.Description == "" || p.Category == "" {
		return fmt.Errorf("name, description, price and category are required: %w", models.ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("price must be a positive number: %w", models.ErrValidation)
	}
	if len(p.Tags) == 0 {
		return fmt.Errorf("at least one tag is required: %w", models.ErrValidation)
	}
	if len(p.Variants) == 0 {
		return fmt.Errorf("at least one variant is required: %w", models.ErrValidation)
	}
	if p.Inventory.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative: %w", models.ErrValidation)
	}
	return nil
}
