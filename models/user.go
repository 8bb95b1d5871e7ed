package models

import (
	"gorm.io/gorm"
)

// User is an admin account. Clients check out without an account.
type User struct {
	gorm.Model   `json:"-"`
	Id           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"unique"`
	PasswordHash string `json:"-"`
}
