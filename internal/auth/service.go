package auth

import (
	"khet-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserFinder abstracts user lookup by username+password (production GORM or
// test doubles).
type UserFinder interface {
	FindByUsernameAndPassword(username, password string) (*models.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByUsernameAndPassword(username, password string) (*models.User, error) {
	return LoginUser(g.DB, LoginInput{Username: username, Password: password})
}

// LoginUser finds the user by username and verifies the password.
func LoginUser(db *gorm.DB, input LoginInput) (*models.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}
	var u models.User
	if err := db.Where("username = ?", input.Username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidUsername
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidUsername
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return &u, nil
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	Language    string `json:"language"`
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
	isSuper, _ := m["is_superuser"].(bool)
	lang := str(m["language"])
	if lang == "" {
		lang = models.LanguageEnglish
	}
	return &SessionUserShape{
		UserID:      userID,
		Username:    str(m["username"]),
		Fullname:    str(m["fullname"]),
		Email:       str(m["email"]),
		IsSuperuser: isSuper,
		Language:    lang,
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
