package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[string]models.Product)}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	return products, nil
}

// Search matches the term case-insensitively against name, description,
// category and tags.
func (r *MockProductRepository) Search(term string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term = strings.ToLower(term)
	var matches []models.Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			matches = append(matches, p)
			continue
		}
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				matches = append(matches, p)
				break
			}
		}
	}
	return matches, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("id %s: %w", id, models.ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Update replaces an existing product as-is, inventory included.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("id %s: %w", product.ID, models.ErrProductNotFound)
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("id %s: %w", id, models.ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

// DecrementStock performs the check and the decrement under one lock, so
// concurrent reservations cannot oversell the last unit.
func (r *MockProductRepository) DecrementStock(id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("id %s: %w", id, models.ErrProductNotFound)
	}
	if !product.Inventory.InStock || product.Inventory.Quantity < qty {
		return fmt.Errorf("product %s: %w", id, models.ErrOutOfStock)
	}
	product.Inventory.Quantity -= qty
	if product.Inventory.Quantity == 0 {
		product.Inventory.InStock = false
	}
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}

// RestoreStock adds units back and forces inStock=true.
func (r *MockProductRepository) RestoreStock(id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("id %s: %w", id, models.ErrProductNotFound)
	}
	product.Inventory.Quantity += qty
	product.Inventory.InStock = true
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}
