package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	uploader storage.Uploader
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, uploader storage.Uploader) *ProductHandler {
	return &ProductHandler{
		service:  service,
		uploader: uploader,
	}
}

// RegisterRoutes registers the product routes. The catalog surface is public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Post("/", h.HandleCreateProduct)
	products.Get("/", h.HandleListProducts)
	products.Get("/:id", h.HandleGetProduct)
	products.Put("/:id", h.HandleUpdateProduct)
	products.Delete("/:id", h.HandleDeleteProduct)
}

// CreateProductRequest is the JSON shape of a new product. Multipart
// requests carry the same fields as form values (tags comma-separated,
// variants/inventory/categoryData as JSON strings) plus an optional image
// file.
type CreateProductRequest struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Price        float64                `json:"price"`
	Category     string                 `json:"category"`
	Tags         []string               `json:"tags"`
	Variants     []models.Variant       `json:"variants"`
	Inventory    models.Inventory       `json:"inventory"`
	CategoryData map[string]interface{} `json:"categoryData"`
	Image        string                 `json:"image"`
}

// UpdateProductRequest is a partial product update.
type UpdateProductRequest struct {
	Name         *string                `json:"name"`
	Description  *string                `json:"description"`
	Price        *float64               `json:"price"`
	Category     *string                `json:"category"`
	Tags         []string               `json:"tags"`
	Variants     []models.Variant       `json:"variants"`
	Inventory    *models.Inventory      `json:"inventory"`
	CategoryData map[string]interface{} `json:"categoryData"`
	Image        *string                `json:"image"`
}

// HandleCreateProduct creates a product from a JSON body or a multipart form
// with an optional image, which is uploaded to object storage first.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := h.parseMultipartProduct(c, &req); err != nil {
			return respondError(c, fiber.StatusBadRequest, err.Error())
		}
	} else if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	product := &models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		Tags:         req.Tags,
		Variants:     req.Variants,
		Inventory:    req.Inventory,
		CategoryData: req.CategoryData,
		Image:        req.Image,
	}
	if err := h.service.CreateProduct(product); err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Product created successfully!", product)
}

// HandleListProducts lists the catalog, or searches it when searchTerm is
// present.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	searchTerm := c.Query("searchTerm")
	products, err := h.service.ListProducts(searchTerm)
	if err != nil {
		return respondDomainError(c, err)
	}

	message := "Products fetched successfully!"
	if searchTerm != "" {
		message = "Products matching search term '" + searchTerm + "' fetched successfully!"
	}
	return respond(c, fiber.StatusOK, message, products)
}

// HandleGetProduct returns a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Product fetched successfully!", product)
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	product, err := h.service.UpdateProduct(c.Params("id"), services.ProductPatch{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		Tags:         req.Tags,
		Variants:     req.Variants,
		Inventory:    req.Inventory,
		CategoryData: req.CategoryData,
		Image:        req.Image,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Product updated successfully!", product)
}

// HandleDeleteProduct hard-deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Product deleted successfully!", nil)
}

func (h *ProductHandler) parseMultipartProduct(c *fiber.Ctx, req *CreateProductRequest) error {
	req.Name = c.FormValue("name")
	req.Description = c.FormValue("description")
	req.Category = c.FormValue("category")
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "price must be a number")
		}
		req.Price = price
	}

	for _, tag := range strings.Split(c.FormValue("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			req.Tags = append(req.Tags, tag)
		}
	}
	if v := c.FormValue("variants"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Variants); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "variants must be a JSON array")
		}
	}
	if v := c.FormValue("inventory"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Inventory); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "inventory must be a JSON object")
		}
	} else {
		quantity, _ := strconv.Atoi(c.FormValue("quantity"))
		req.Inventory = models.Inventory{Quantity: quantity, InStock: c.FormValue("inStock") == "true"}
	}
	if v := c.FormValue("categoryData"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.CategoryData); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "categoryData must be a JSON object")
		}
	}

	file, err := c.FormFile("image")
	if err != nil || file == nil {
		return nil // image is optional
	}
	src, err := file.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read image upload")
	}
	defer src.Close()

	url, err := h.uploader.Upload(file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		logrus.WithError(err).Warn("image upload failed")
		return fiber.NewError(fiber.StatusBadRequest, "image upload failed")
	}
	req.Image = url
	return nil
}
