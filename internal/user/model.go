package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type AppUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Firstname    string    `gorm:"size:100" json:"firstname"`
	Lastname     string    `gorm:"size:100" json:"lastname"`
	UserTitle    string    `gorm:"size:20" json:"user_title"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
