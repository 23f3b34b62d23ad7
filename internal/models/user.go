package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	Username string   `json:"username" gorm:"uniqueIndex;not null;size:100"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index" validate:"required,user_role"`

	// Students belong to at most one section
	SectionID *uint    `json:"section_id,omitempty" gorm:"index"`
	Section   *Section `json:"section,omitempty" gorm:"foreignKey:SectionID"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

type Section struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Code     string `json:"code" gorm:"uniqueIndex;not null;size:20" validate:"required,min=1,max=20"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Students []User `json:"students,omitempty" gorm:"foreignKey:SectionID"`

	// Computed fields (not stored)
	StudentCount int `json:"student_count" gorm:"-"`
}

func (Section) TableName() string {
	return "sections"
}
