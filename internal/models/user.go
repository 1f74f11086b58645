// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

// User exists only to back the single shared admin session. There is no
// customer identity; storefront orders carry contact fields inline.
type User struct {
	BaseModel
	Email        string   `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);default:'admin'"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
