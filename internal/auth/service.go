package auth

import (
	"context"
	"strings"

	"agritoken-backend/internal/domain"
	"agritoken-backend/internal/pkg/apperr"
	"agritoken-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service handles signup and login against the user store.
type Service struct {
	DB *gorm.DB
}

// SignupInput mirrors the signup request body.
type SignupInput struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	WalletAddress string `json:"walletAddress"`
	Role          string `json:"role"`
}

// Signup creates a user after validating shape and email uniqueness.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, apperr.Field("firstName", "First name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return nil, apperr.Field("lastName", "Last name is required")
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, apperr.Field("email", "Invalid email format")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, apperr.Field("password", "Password must be at least 8 characters with a letter, a number and a special character")
	}
	if in.WalletAddress != "" && !validation.IsValidWalletAddress(in.WalletAddress) {
		return nil, apperr.Field("walletAddress", "Invalid Algorand wallet address format")
	}
	if in.Role != domain.RoleFarmer && in.Role != domain.RoleInvestor {
		return nil, ErrInvalidRole
	}

	email := strings.TrimSpace(strings.ToLower(in.Email))
	var existing domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         email,
		PasswordHash:  string(hash),
		WalletAddress: in.WalletAddress,
		Role:          in.Role,
		Status:        "Active",
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login finds a user by email and verifies the password.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(in.Email)).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID        string `json:"user_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	WalletAddress string `json:"wallet_address"`
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:        userID,
		FirstName:     str(m["first_name"]),
		LastName:      str(m["last_name"]),
		Email:         str(m["email"]),
		Role:          str(m["role"]),
		WalletAddress: str(m["wallet_address"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
