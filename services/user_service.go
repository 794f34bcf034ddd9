package services

import (
	"errors"
	"strings"

	"blog-restful/apperrors"
	"blog-restful/auth"
	"blog-restful/models"
	"blog-restful/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// The UserService interface defines the methods that user services need to implement
type UserService interface {
	Register(input *RegisterInput) (*models.User, error)
	Login(input *LoginInput) (string, *models.User, error)
	Authenticate(token string) (*models.User, error)
	GetByID(userID uint) (*models.User, error)
}

// --- Structs for Input/Output ---

type RegisterInput struct {
	FirstName string `json:"firstName" description:"First name, 3-20 characters"`
	LastName  string `json:"lastName" description:"Last name, 3-20 characters"`
	Email     string `json:"email" description:"Email address, unique"`
	Password  string `json:"password" description:"Password, 6-30 characters"`
}

type LoginInput struct {
	Email    string `json:"email" description:"Email for login"`
	Password string `json:"password" description:"Password for login"`
}

// userService is the implementation of the UserService interface
type userService struct {
	repo       repositories.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService instance. A bcryptCost of 0 falls
// back to bcrypt.DefaultCost.
func NewUserService(repo repositories.UserRepository, bcryptCost int, logger *zap.Logger) UserService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

// Register creates a new account with a salted adaptive password hash.
func (s *userService) Register(input *RegisterInput) (*models.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, apperrors.BadRequest("Missing required fields (firstName, lastName, email, password)")
	}
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		return nil, apperrors.Internal("Could not hash password")
	}

	user := models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.Create(&user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Email already exists")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, apperrors.Internal("Database internal error")
	}

	return &user, nil
}

func validateRegisterInput(input *RegisterInput) error {
	if !strings.Contains(input.Email, "@") {
		return apperrors.Validation("Invalid email format: email must be a valid email address")
	}
	if len(input.Password) < 6 || len(input.Password) > 30 {
		return apperrors.Validation("Invalid password format: password must be between 6 and 30 characters")
	}
	if len(input.FirstName) < 3 || len(input.FirstName) > 20 {
		return apperrors.Validation("Invalid first name format: first name must be between 3 and 20 characters")
	}
	if len(input.LastName) < 3 || len(input.LastName) > 20 {
		return apperrors.Validation("Invalid last name format: last name must be between 3 and 20 characters")
	}
	return nil
}

// Login verifies credentials and issues a signed, time-limited token.
// Unknown email and wrong password return the same error so the response
// doesn't reveal which check failed.
func (s *userService) Login(input *LoginInput) (string, *models.User, error) {
	if input.Email == "" || input.Password == "" {
		return "", nil, apperrors.BadRequest("Email and password are required")
	}

	user, err := s.repo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.Unauthorized("Invalid credentials")
		}
		s.logger.Error("Failed to look up user for login", zap.Error(err))
		return "", nil, apperrors.Internal("Database internal error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return "", nil, apperrors.Internal("Could not generate token")
	}

	return token, user, nil
}

// Authenticate verifies a token and re-fetches the user from storage so
// permission changes take effect without re-login.
func (s *userService) Authenticate(token string) (*models.User, error) {
	claims, err := auth.ParseAndValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err.Error())
	}
	return s.GetByID(claims.UserID)
}

// GetByID loads the current user state.
func (s *userService) GetByID(userID uint) (*models.User, error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		s.logger.Error("Failed to load user", zap.Error(err))
		return nil, apperrors.Internal("Database internal error")
	}
	return user, nil
}
