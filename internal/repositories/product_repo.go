package repositories

import "storefront/internal/models"

// ProductRepository defines the interface for product data access.
//
// DecrementStock must be atomic: it decrements inventory by qty only when at
// least qty units are available, and flips inStock to false when the
// quantity reaches zero. RestoreStock adds units back and forces
// inStock=true.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	Search(term string) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	DecrementStock(id string, qty int) error
	RestoreStock(id string, qty int) error
}
