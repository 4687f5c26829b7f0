package models

import (
	"gorm.io/gorm"
)

// User is an account that may own an inbox. Only the fields required to decide
// inbox eligibility are modelled here.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
