package repositories

import "storefront/internal/models"

// OrderRepository defines the interface for order data access. Listings are
// newest first. GetByIDForUser scopes the lookup to an owner so foreign
// orders surface as not-found rather than forbidden.
type OrderRepository interface {
	Create(order *models.Order) error
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUser(userID string) ([]models.Order, error)
	GetByIDForUser(id, userID string) (*models.Order, error)
	UpdateStatus(id string, status models.OrderStatus) error
}
