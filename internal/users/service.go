package users

import (
	"context"
	"errors"
	"strings"

	"khet-backend/internal/models"
	"khet-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("User not found")
	ErrUsernameRequired = errors.New("Username is required")
	ErrInvalidUsername  = errors.New("Invalid username format")
	ErrInvalidEmail     = errors.New("Invalid email format")
	ErrInvalidPassword  = errors.New("Invalid password format")
	ErrInvalidLanguage  = errors.New("Unsupported language")
	ErrUsernameTaken    = errors.New("Username already registered")
	ErrEmailTaken       = errors.New("Email already registered")
	ErrNotPermitted     = errors.New("You do not have permission to access this user")
	ErrHasDependents    = errors.New("User owns farms and cannot be deleted")
)

type Service struct {
	DB *gorm.DB
}

// CreateUserInput carries the fields a superuser may set on a new account.
type CreateUserInput struct {
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	IsSuperuser bool   `json:"is_superuser"`
	Language    string `json:"language"`
}

func validLanguage(lang string) bool {
	return lang == "" || lang == models.LanguageEnglish || lang == models.LanguageUrdu
}

// CreateUser creates an account. Only superusers reach this path; the caller
// enforces that on the route.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if !validation.IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if in.Password == "" || !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	if !validLanguage(in.Language) {
		return nil, ErrInvalidLanguage
	}

	var existing models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	}
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     username,
		Fullname:     strings.TrimSpace(in.Fullname),
		Email:        email,
		PasswordHash: string(hash),
		IsSuperuser:  in.IsSuperuser,
		IsActive:     true,
		Language:     in.Language,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// ViewUser returns a user row. Restricted principals may only view themselves.
func (s *Service) ViewUser(ctx context.Context, principal *models.User, userID uuid.UUID) (*models.User, error) {
	if !principal.IsSuperuser && principal.UserID != userID {
		return nil, ErrNotPermitted
	}
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateUserInput: pointer fields distinguish "absent" from zero values.
type UpdateUserInput struct {
	Fullname    *string `json:"fullname"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Language    *string `json:"language"`
	IsSuperuser *bool   `json:"is_superuser"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateUser applies partial updates. Restricted principals may only update
// themselves and cannot change is_superuser or is_active.
func (s *Service) UpdateUser(ctx context.Context, principal *models.User, userID uuid.UUID, in UpdateUserInput) (*models.User, error) {
	if !principal.IsSuperuser {
		if principal.UserID != userID {
			return nil, ErrNotPermitted
		}
		if in.IsSuperuser != nil || in.IsActive != nil {
			return nil, ErrNotPermitted
		}
	}
	u, err := s.ViewUser(ctx, principal, userID)
	if err != nil {
		return nil, err
	}
	if in.Fullname != nil {
		u.Fullname = strings.TrimSpace(*in.Fullname)
	}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if !validation.IsValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		var existing models.User
		if err := s.DB.WithContext(ctx).Where("email = ? AND user_id <> ?", email, userID).First(&existing).Error; err == nil {
			return nil, ErrEmailTaken
		}
		u.Email = email
	}
	if in.Password != nil {
		if !validation.IsValidPassword(*in.Password) {
			return nil, ErrInvalidPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), 10)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if in.Language != nil {
		if !validLanguage(*in.Language) || *in.Language == "" {
			return nil, ErrInvalidLanguage
		}
		u.Language = *in.Language
	}
	if in.IsSuperuser != nil {
		u.IsSuperuser = *in.IsSuperuser
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns all accounts, newest first. Superuser only.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// RemoveUser deletes an account. Farm ownership protects the row, mirroring
// the RESTRICT constraint on farms.owner_id.
func (s *Service) RemoveUser(ctx context.Context, userID uuid.UUID) error {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrUserNotFound
		}
		return err
	}
	var farms int64
	if err := s.DB.WithContext(ctx).Model(&models.Farm{}).Where("owner_id = ?", userID).Count(&farms).Error; err != nil {
		return err
	}
	if farms > 0 {
		return ErrHasDependents
	}
	return s.DB.WithContext(ctx).Delete(&u).Error
}
