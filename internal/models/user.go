// internal/models/user.go
package models

import (
	"encoding/json"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User backs both realtors and admins. Realtor stats are never stored here.
type User struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:255;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone        string     `json:"phone" gorm:"uniqueIndex;size:20;not null"`
	BirthDate    *time.Time `json:"birth_date" gorm:"type:date"`
	Type         UserType   `json:"type" gorm:"type:varchar(20);not null;index"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Lifecycle    Lifecycle  `json:"lifecycle" gorm:"type:varchar(20);not null;default:'active';index"`
	BlockedAt    *time.Time `json:"blocked_at"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// IsActive reports the legacy "active" signal: anything not retired.
func (u *User) IsActive() bool {
	return u.Lifecycle != LifecycleDeleted
}

// MarshalJSON adds the is_active signal older clients read.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{
		alias:    alias(u),
		IsActive: u.IsActive(),
	})
}
