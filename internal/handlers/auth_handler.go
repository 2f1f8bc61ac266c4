package handlers

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for accounts and authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the auth routes. authRequired and adminOnly are
// the two gates composed per-route.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired, adminOnly fiber.Handler) {
	auth := router.Group("/auth")
	auth.Post("/signup", h.HandleSignup)
	auth.Post("/login", h.HandleLogin)
	// Dev-only admin provisioning, unauthenticated by design.
	auth.Post("/create-admin", h.HandleCreateAdmin)

	auth.Get("/profile", authRequired, h.HandleGetProfile)
	auth.Put("/profile", authRequired, h.HandleUpdateProfile)
	auth.Put("/change-password", authRequired, h.HandleChangePassword)
	auth.Post("/logout", authRequired, h.HandleLogout)

	auth.Get("/users", authRequired, adminOnly, h.HandleListUsers)
	auth.Delete("/users/:id", authRequired, adminOnly, h.HandleDeleteUser)
}

// SignupRequest is the request body for signup and create-admin.
type SignupRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Role     models.Role    `json:"role" validate:"omitempty,oneof=customer admin"`
	Profile  models.Profile `json:"profile"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is a partial update of name and profile fields.
type UpdateProfileRequest struct {
	Name    *string         `json:"name" validate:"omitempty,min=1"`
	Profile *models.Profile `json:"profile"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// HandleSignup creates an account and issues a token.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, token, err := h.authService.Register(services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Profile:  req.Profile,
	})
	if err != nil {
		return respondDomainError(c, err)
	}

	return respond(c, fiber.StatusCreated, "User registered successfully!", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// HandleLogin authenticates and issues a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return respondDomainError(c, err)
	}

	return respond(c, fiber.StatusOK, "Login successful!", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// HandleCreateAdmin provisions an admin account. Dev-only endpoint.
func (h *AuthHandler) HandleCreateAdmin(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, token, err := h.authService.Register(services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleAdmin,
		Profile:  req.Profile,
	})
	if err != nil {
		return respondDomainError(c, err)
	}

	return respond(c, fiber.StatusCreated, "Admin user created successfully!", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// HandleGetProfile returns the caller's account.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(currentUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Profile fetched successfully!", user)
}

// HandleUpdateProfile patches the caller's name and profile fields.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	user, err := h.authService.UpdateProfile(currentUserID(c), services.ProfilePatch{
		Name:    req.Name,
		Profile: req.Profile,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Profile updated successfully!", user)
}

// HandleChangePassword rotates the caller's password.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.authService.ChangePassword(currentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Password changed successfully", nil)
}

// HandleLogout acknowledges logout. Tokens are stateless; the client drops
// the token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "Logged out successfully!", nil)
}

// HandleListUsers returns every account. Admin only.
func (h *AuthHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers()
	if err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "Users fetched successfully!", users)
}

// HandleDeleteUser hard-deletes an account. Admin only.
func (h *AuthHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.authService.DeleteUser(c.Params("id")); err != nil {
		return respondDomainError(c, err)
	}
	return respond(c, fiber.StatusOK, "User deleted successfully!", nil)
}

func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func currentEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("email").(string)
	return email
}

func respondValidationError(c *fiber.Ctx, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		e := verrs[0]
		return respondError(c, fiber.StatusBadRequest,
			fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag()))
	}
	return respondError(c, fiber.StatusBadRequest, "Validation failed")
}
