package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// envelope mirrors the response body every endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupApp wires a full application against an isolated in-memory database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}))

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(userRepo, "integration_test_secret", time.Hour)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo)

	uploader, err := storage.NewS3Uploader(storage.Config{})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "message": err.Error()})
		},
	})

	authRequired := middleware.AuthRequired(authService, userRepo)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api, authRequired, adminOnly)
	handlers.NewProductHandler(productService, uploader).RegisterRoutes(api)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, authRequired, adminOnly)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
	return app
}

// doJSON performs a request with an optional bearer token and JSON body, and
// decodes the envelope.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

type authPayload struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func signup(t *testing.T, app *fiber.App, path, name, email, password string) authPayload {
	t.Helper()
	status, env := doJSON(t, app, http.MethodPost, path, "", fiber.Map{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var payload authPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Token)
	return payload
}

func createProduct(t *testing.T, app *fiber.App, name string, price float64, qty int) models.Product {
	t.Helper()
	status, env := doJSON(t, app, http.MethodPost, "/api/products", "", fiber.Map{
		"name":        name,
		"description": "integration test product",
		"price":       price,
		"category":    "test",
		"tags":        []string{"test", name},
		"variants":    []fiber.Map{{"type": "size", "value": "M"}},
		"inventory":   fiber.Map{"quantity": qty, "inStock": qty > 0},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var product models.Product
	require.NoError(t, json.Unmarshal(env.Data, &product))
	require.NotEmpty(t, product.ID)
	return product
}

func TestPurchaseFlow(t *testing.T) {
	app := setupApp(t)

	admin := signup(t, app, "/api/auth/create-admin", "Admin", "admin@example.com", "adminpass")
	assert.Equal(t, models.RoleAdmin, admin.User.Role)

	customer := signup(t, app, "/api/auth/signup", "Casey Customer", "casey@example.com", "password123")
	assert.Equal(t, models.RoleCustomer, customer.User.Role)

	product := createProduct(t, app, "Espresso Grinder", 149.00, 3)

	// Customer places an order for two units.
	status, env := doJSON(t, app, http.MethodPost, "/api/orders", customer.Token, fiber.Map{
		"items": []fiber.Map{{"productId": product.ID, "quantity": 2}},
		"shippingAddress": fiber.Map{
			"address": "12 Harbour Rd",
			"city":    "Bergen",
			"country": "Norway",
		},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 298.00, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Espresso Grinder", order.Items[0].Name)

	// Stock went down by two.
	status, env = doJSON(t, app, http.MethodGet, "/api/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, 1, fetched.Inventory.Quantity)
	assert.True(t, fetched.Inventory.InStock)

	// Admin sees the order with the purchaser attached.
	status, env = doJSON(t, app, http.MethodGet, "/api/orders", admin.Token, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var allOrders []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &allOrders))
	require.Len(t, allOrders, 1)
	require.NotNil(t, allOrders[0].User)
	assert.Equal(t, "casey@example.com", allOrders[0].User.Email)

	// Admin ships it; the customer can no longer cancel.
	status, env = doJSON(t, app, http.MethodPut, "/api/orders/"+order.ID+"/status", admin.Token, fiber.Map{
		"status": "shipped",
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = doJSON(t, app, http.MethodPut, "/api/orders/"+order.ID+"/cancel", customer.Token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestCancelRestoresStock(t *testing.T) {
	app := setupApp(t)

	customer := signup(t, app, "/api/auth/signup", "Casey", "casey@example.com", "password123")
	product := createProduct(t, app, "Desk Lamp", 39.00, 2)

	// Buy out the stock entirely.
	status, env := doJSON(t, app, http.MethodPost, "/api/orders", customer.Token, fiber.Map{
		"items": []fiber.Map{{"productId": product.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))

	status, env = doJSON(t, app, http.MethodGet, "/api/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	var fetched models.Product
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, 0, fetched.Inventory.Quantity)
	assert.False(t, fetched.Inventory.InStock)

	// A second buyer is refused while the product is sold out.
	other := signup(t, app, "/api/auth/signup", "Riley", "riley@example.com", "password123")
	status, env = doJSON(t, app, http.MethodPost, "/api/orders", other.Token, fiber.Map{
		"items": []fiber.Map{{"productId": product.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Cancelling makes it purchasable again.
	status, env = doJSON(t, app, http.MethodPut, "/api/orders/"+order.ID+"/cancel", customer.Token, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var cancelled models.Order
	require.NoError(t, json.Unmarshal(env.Data, &cancelled))
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	status, env = doJSON(t, app, http.MethodGet, "/api/products/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, 2, fetched.Inventory.Quantity)
	assert.True(t, fetched.Inventory.InStock)
}

func TestSignupAndLogin(t *testing.T) {
	app := setupApp(t)

	signup(t, app, "/api/auth/signup", "Casey", "casey@example.com", "password123")

	// Duplicate email, case-insensitively.
	status, env := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"name":     "Copycat",
		"email":    "CASEY@example.com",
		"password": "password456",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	// Wrong password.
	status, env = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "casey@example.com",
		"password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	// Correct login, with a mixed-case address.
	status, env = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "Casey@Example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var payload authPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.NotEmpty(t, payload.Token)

	// Short password is rejected by request validation.
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"name":     "Shorty",
		"email":    "short@example.com",
		"password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProfileEndpoints(t *testing.T) {
	app := setupApp(t)

	customer := signup(t, app, "/api/auth/signup", "Casey", "casey@example.com", "password123")

	status, env := doJSON(t, app, http.MethodGet, "/api/auth/profile", customer.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var user models.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "casey@example.com", user.Email)

	status, env = doJSON(t, app, http.MethodPut, "/api/auth/profile", customer.Token, fiber.Map{
		"name":    "Casey Q. Customer",
		"profile": fiber.Map{"city": "Bergen", "phone": "99887766"},
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "Casey Q. Customer", user.Name)
	assert.Equal(t, "Bergen", user.Profile.City)

	// Rotate the password and log in with the new one.
	status, env = doJSON(t, app, http.MethodPut, "/api/auth/change-password", customer.Token, fiber.Map{
		"currentPassword": "password123",
		"newPassword":     "betterpassword",
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "casey@example.com",
		"password": "betterpassword",
	})
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "casey@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthorizationBoundaries(t *testing.T) {
	app := setupApp(t)

	customer := signup(t, app, "/api/auth/signup", "Casey", "casey@example.com", "password123")

	// No token.
	status, env := doJSON(t, app, http.MethodGet, "/api/orders/my-orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	// Malformed header.
	req := httptest.NewRequest(http.MethodGet, "/api/orders/my-orders", nil)
	req.Header.Set("Authorization", "Token abc123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Garbage token.
	status, _ = doJSON(t, app, http.MethodGet, "/api/orders/my-orders", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Customer hitting admin-only routes.
	status, _ = doJSON(t, app, http.MethodGet, "/api/orders", customer.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/auth/users", customer.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProductCatalog(t *testing.T) {
	app := setupApp(t)

	grinder := createProduct(t, app, "Espresso Grinder", 149.00, 3)
	createProduct(t, app, "Pour-Over Kettle", 59.00, 5)

	// Full listing.
	status, env := doJSON(t, app, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, status)
	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 2)

	// Search matches name case-insensitively.
	status, env = doJSON(t, app, http.MethodGet, "/api/products?searchTerm=grinder", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, grinder.ID, products[0].ID)

	// Search with no hits returns an empty list, not an error.
	status, env = doJSON(t, app, http.MethodGet, "/api/products?searchTerm=zzz", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Empty(t, products)

	// Partial update.
	newPrice := 129.00
	status, env = doJSON(t, app, http.MethodPut, "/api/products/"+grinder.ID, "", fiber.Map{
		"price": newPrice,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var updated models.Product
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, newPrice, updated.Price)
	assert.Equal(t, "Espresso Grinder", updated.Name)

	// Validation failure on create.
	status, env = doJSON(t, app, http.MethodPost, "/api/products", "", fiber.Map{
		"name": "Incomplete",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	// Delete, then 404.
	status, _ = doJSON(t, app, http.MethodDelete, "/api/products/"+grinder.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/products/"+grinder.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrderListing(t *testing.T) {
	app := setupApp(t)

	casey := signup(t, app, "/api/auth/signup", "Casey", "casey@example.com", "password123")
	riley := signup(t, app, "/api/auth/signup", "Riley", "riley@example.com", "password123")
	product := createProduct(t, app, "Notebook", 9.00, 50)

	placeOrder := func(token string, qty int) models.Order {
		status, env := doJSON(t, app, http.MethodPost, "/api/orders", token, fiber.Map{
			"items": []fiber.Map{{"productId": product.ID, "quantity": qty}},
		})
		require.Equal(t, http.StatusCreated, status, env.Message)
		var order models.Order
		require.NoError(t, json.Unmarshal(env.Data, &order))
		return order
	}

	placeOrder(casey.Token, 1)
	placeOrder(riley.Token, 2)
	placeOrder(casey.Token, 3)

	status, env := doJSON(t, app, http.MethodGet, "/api/orders/my-orders", casey.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 2, "listing is scoped to the caller")
	for _, o := range orders {
		assert.Equal(t, casey.User.ID, o.UserID)
	}

	// Unknown order id.
	status, _ = doJSON(t, app, http.MethodGet, "/api/orders/"+uuid.New().String(), casey.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Invalid status value.
	admin := signup(t, app, "/api/auth/create-admin", "Admin", "admin@example.com", "adminpass")
	status, _ = doJSON(t, app, http.MethodPut, "/api/orders/"+orders[0].ID+"/status", admin.Token, fiber.Map{
		"status": "lost-in-transit",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(t)

	status, env := doJSON(t, app, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)
}
