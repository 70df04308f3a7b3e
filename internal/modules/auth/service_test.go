package auth

import (
	"context"
	"testing"

	"tripmarket/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u != nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type stubJWT struct{}

func (stubJWT) GenerateToken(userID int64, role string) (string, error) {
	return "token", nil
}

func TestRegister_DefaultsToTraveler(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ada@test.io").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewService(users, stubJWT{})

	u, err := service.Register(context.Background(), RegisterRequest{
		Email:    "Ada@Test.io ",
		Password: "password123",
		Name:     "Ada",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleTraveler, u.Role)
	assert.Equal(t, "ada@test.io", u.Email, "email is normalized")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
}

func TestRegister_Vendor(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "tours@test.io").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := NewService(users, stubJWT{})

	u, err := service.Register(context.Background(), RegisterRequest{
		Email:    "tours@test.io",
		Password: "password123",
		Name:     "Savanna Tours",
		Vendor:   true,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleVendor, u.Role)
}

func TestRegister_EmailTaken(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ada@test.io").Return(&domain.User{ID: 1}, nil)

	service := NewService(users, stubJWT{})

	_, err := service.Register(context.Background(), RegisterRequest{
		Email:    "ada@test.io",
		Password: "password123",
		Name:     "Ada",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ada@test.io").Return(&domain.User{
		ID: 1, Email: "ada@test.io", PasswordHash: string(hash), Role: domain.RoleTraveler,
	}, nil)

	service := NewService(users, stubJWT{})

	result, err := service.Login(context.Background(), LoginRequest{
		Email:    "ada@test.io",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "token", result.AccessToken)
	assert.Equal(t, int64(1), result.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ada@test.io").Return(&domain.User{
		ID: 1, Email: "ada@test.io", PasswordHash: string(hash),
	}, nil)

	service := NewService(users, stubJWT{})

	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "ada@test.io",
		Password: "nope",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "ghost@test.io").Return(nil, gorm.ErrRecordNotFound)

	service := NewService(users, stubJWT{})

	_, err := service.Login(context.Background(), LoginRequest{
		Email:    "ghost@test.io",
		Password: "password123",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
