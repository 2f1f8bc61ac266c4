package services_test

import (
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a testify mock of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo *MockUserRepository) *services.AuthService {
	return services.NewAuthService(repo, testJWTSecret, time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	mockRepo.On("GetByEmail", "new@example.com").Return(nil, models.ErrUserNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, token, err := authService.Register(services.SignupInput{
		Name:     "New User",
		Email:    "New@Example.com",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "new@example.com", user.Email, "email should be stored lowercased")
	assert.Equal(t, models.RoleCustomer, user.Role, "role should default to customer")
	assert.NotEqual(t, "password123", user.Password, "password must be hashed before persisting")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	existing := &models.User{ID: "user-1", Email: "taken@example.com"}
	// The duplicate check is against the lowercased address.
	mockRepo.On("GetByEmail", "taken@example.com").Return(existing, nil).Once()

	_, _, err := authService.Register(services.SignupInput{
		Name:     "Other",
		Email:    "TAKEN@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	mockRepo.On("GetByEmail", "role@example.com").Return(nil, models.ErrUserNotFound).Once()

	_, _, err := authService.Register(services.SignupInput{
		Name:     "Role User",
		Email:    "role@example.com",
		Password: "password123",
		Role:     models.Role("superuser"),
	})
	assert.ErrorIs(t, err, models.ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Name:     "Test User",
		Email:    "test@example.com",
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}

	mockRepo.On("GetByEmail", "test@example.com").Return(user, nil).Once()
	_, token, err := authService.Login("test@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// The token decodes to the same identity and role.
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "test@example.com", claims["email"])
	assert.Equal(t, "admin", claims["role"])
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_NoUserEnumeration(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Email: "test@example.com", Password: string(hashed)}

	// Wrong password and unknown email must fail identically.
	mockRepo.On("GetByEmail", "test@example.com").Return(user, nil).Once()
	_, _, errWrongPassword := authService.Login("test@example.com", "nope")

	mockRepo.On("GetByEmail", "ghost@example.com").Return(nil, models.ErrUserNotFound).Once()
	_, _, errUnknownEmail := authService.Login("ghost@example.com", "password123")

	assert.ErrorIs(t, errWrongPassword, models.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, models.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	user := &models.User{ID: "user-123", Email: "test@example.com", Role: models.RoleCustomer}
	token, err := authService.GenerateToken(user)
	assert.NoError(t, err)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "customer", claims["role"])

	// Garbage token.
	_, err = authService.ValidateToken("not.a.token")
	assert.Error(t, err)

	// Expired token.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredString)
	assert.Error(t, err)

	// Token signed with a different secret.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forgedString, _ := forged.SignedString([]byte("other_secret"))
	_, err = authService.ValidateToken(forgedString)
	assert.Error(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Email: "test@example.com", Password: string(hashed)}

	// Wrong current password.
	mockRepo.On("GetByID", "user-123").Return(user, nil).Once()
	err := authService.ChangePassword("user-123", "wrong", "newpassword")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// Correct current password re-hashes and persists.
	mockRepo.On("GetByID", "user-123").Return(user, nil).Once()
	mockRepo.On("Update", mock.MatchedBy(func(u *models.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("newpassword")) == nil
	})).Return(nil).Once()
	err = authService.ChangePassword("user-123", "oldpassword", "newpassword")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	user := &models.User{ID: "user-123", Name: "Old Name", Email: "test@example.com"}
	newName := "New Name"
	profile := models.Profile{Phone: "123456", City: "Oslo"}

	mockRepo.On("GetByID", "user-123").Return(user, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	updated, err := authService.UpdateProfile("user-123", services.ProfilePatch{
		Name:    &newName,
		Profile: &profile,
	})
	assert.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "Oslo", updated.Profile.City)

	// Unknown user.
	mockRepo.On("GetByID", "ghost").Return(nil, models.ErrUserNotFound).Once()
	_, err = authService.UpdateProfile("ghost", services.ProfilePatch{Name: &newName})
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	mockRepo.AssertExpectations(t)
}
