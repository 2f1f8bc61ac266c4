package repositories

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// GetAll retrieves all products.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// Search performs a case-insensitive substring match against name,
// description, category and tags. Tags are stored as a JSON array column, so
// a LIKE over the serialized text covers membership.
func (r *GORMProductRepository) Search(term string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	var products []models.Product
	err := r.db.Where(
		"lower(name) LIKE ? OR lower(description) LIKE ? OR lower(category) LIKE ? OR lower(tags) LIKE ?",
		pattern, pattern, pattern, pattern,
	).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("id %s: %w", id, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product. Save writes all fields, including
// whatever inventory the caller supplied; it does not recompute inStock.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("id %s: %w", product.ID, models.ErrProductNotFound)
	}
	return nil
}

// Delete is a hard delete. Orders keep their denormalized snapshots, so no
// cascade check is needed.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("id %s: %w", id, models.ErrProductNotFound)
	}
	return nil
}

// DecrementStock reserves qty units in a single conditional UPDATE. Two
// concurrent reservations of the last unit cannot both match the guard, so
// the quantity never goes negative.
func (r *GORMProductRepository) DecrementStock(id string, qty int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND inventory_in_stock = ? AND inventory_quantity >= ?", id, true, qty).
		Updates(map[string]interface{}{
			"inventory_quantity": gorm.Expr("inventory_quantity - ?", qty),
			"inventory_in_stock": gorm.Expr("inventory_quantity - ? > 0", qty),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to decrement stock for product %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("id %s: %w", id, models.ErrProductNotFound)
		}
		return fmt.Errorf("product %s: %w", id, models.ErrOutOfStock)
	}
	return nil
}

// RestoreStock adds qty units back and forces inStock=true, even if the
// product was modified since the reservation.
func (r *GORMProductRepository) RestoreStock(id string, qty int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"inventory_quantity": gorm.Expr("inventory_quantity + ?", qty),
			"inventory_in_stock": true,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to restore stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("id %s: %w", id, models.ErrProductNotFound)
	}
	return nil
}
