package model

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:50;not null" json:"name"`
	Nickname     string    `gorm:"size:50" json:"nickname"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	ProfileImage string    `gorm:"size:500" json:"profile_image"`
	Role         string    `gorm:"size:20;default:USER" json:"role"`
	Grade        string    `gorm:"size:20" json:"grade"`
	IsDeleted    bool      `gorm:"default:false" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
