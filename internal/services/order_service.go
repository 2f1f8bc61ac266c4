package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/sirupsen/logrus"
)

// OrderService handles the order workflow: placement with inventory
// reservation, cancellation with restoration, status transitions and
// listings.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, userRepo repositories.UserRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// OrderItemInput is a requested {productId, quantity} pair.
type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrder validates and reserves each requested item in order, snapshots
// product data into the order, and persists it with status pending.
//
// Reservation is per-item: each DecrementStock is a single atomic
// conditional decrement, and every successful reservation is recorded so a
// failure later in the loop (or on the final insert) restores all of them
// before the error is returned. A failed order leaves stock unchanged.
func (s *OrderService) PlaceOrder(userID, email string, items []OrderItemInput, shipping *models.ShippingAddress) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order must have at least one item: %w", models.ErrValidation)
	}

	type reservation struct {
		productID string
		quantity  int
	}
	var reserved []reservation
	release := func() {
		for _, r := range reserved {
			if err := s.productRepo.RestoreStock(r.productID, r.quantity); err != nil {
				logrus.WithError(err).WithField("product_id", r.productID).
					Error("failed to restore stock after aborted order")
			}
		}
	}

	var orderItems []models.OrderItem
	var totalAmount float64
	for _, item := range items {
		if item.Quantity <= 0 {
			release()
			return nil, fmt.Errorf("quantity must be positive: %w", models.ErrValidation)
		}

		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			release()
			return nil, err
		}

		if err := s.productRepo.DecrementStock(product.ID, item.Quantity); err != nil {
			release()
			return nil, err
		}
		reserved = append(reserved, reservation{productID: product.ID, quantity: item.Quantity})

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Image:     product.Image,
		})
		totalAmount += product.Price * float64(item.Quantity)
	}

	order := &models.Order{
		UserID:          userID,
		Email:           email,
		Items:           orderItems,
		TotalAmount:     totalAmount,
		Status:          models.OrderStatusPending,
		ShippingAddress: shipping,
	}
	if err := s.orderRepo.Create(order); err != nil {
		release()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"items":    len(orderItems),
		"total":    totalAmount,
	}).Info("order placed")
	return order, nil
}

// CancelOrder cancels a pending order owned by userID and restores the
// reserved inventory. Orders owned by someone else surface as not-found.
// Products deleted since the purchase are skipped during restoration.
func (s *OrderService) CancelOrder(orderID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDForUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, models.ErrInvalidOrderState)
	}

	for _, item := range order.Items {
		if err := s.productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"order_id":   orderID,
				"product_id": item.ProductID,
			}).Warn("could not restore stock for cancelled order item")
		}
	}

	if err := s.orderRepo.UpdateStatus(orderID, models.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusCancelled

	logrus.WithFields(logrus.Fields{"order_id": orderID, "user_id": userID}).Info("order cancelled")
	return order, nil
}

// UpdateOrderStatus overwrites the status with any recognized enum member.
// There is no transition-graph validation.
func (s *OrderService) UpdateOrderStatus(orderID string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, models.ErrInvalidOrderStatus)
	}
	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// GetOrderByID retrieves a single order.
func (s *OrderService) GetOrderByID(orderID string) (*models.Order, error) {
	return s.orderRepo.GetByID(orderID)
}

// ListUserOrders returns the requesting user's orders, newest first.
func (s *OrderService) ListUserOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(userID)
}

// ListAllOrders returns every order, newest first, each populated with a
// purchaser summary.
func (s *OrderService) ListAllOrders() ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll()
	if err != nil {
		return nil, err
	}

	summaries := make(map[string]models.UserSummary)
	for i := range orders {
		summary, ok := summaries[orders[i].UserID]
		if !ok {
			user, err := s.userRepo.GetByID(orders[i].UserID)
			if err != nil {
				// Purchaser may have been deleted; leave the summary empty.
				continue
			}
			summary = user.Summary()
			summaries[orders[i].UserID] = summary
		}
		s := summary
		orders[i].User = &s
	}
	return orders, nil
}
