package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the user role used for capability checks across all endpoints
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// ValidRole reports whether r is one of the known roles
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name              string     `json:"name" gorm:"default:''"`
	Email             string     `json:"email" gorm:"unique;not null"`
	Password          string     `json:"-" gorm:"not null"`
	Role              Role       `json:"role" gorm:"default:'STUDENT'"` // STUDENT, TEACHER, ADMIN
	Bio               string     `json:"bio" gorm:"type:text"`
	PhoneNumber       string     `json:"phone_number"`
	Address           string     `json:"address"`
	DateOfBirth       *time.Time `json:"date_of_birth"`
	ProfilePictureURL string     `json:"profile_picture_url"`
	InstitutionName   string     `json:"institution_name"`
	ExaminationTypeID *uint      `json:"examination_type_id" gorm:"index"`
	LastLogin         *time.Time `json:"last_login"`
	IsDeleted         bool       `json:"-" gorm:"default:false"`
}

// ExaminationType is admin-managed metadata attached to student profiles
type ExaminationType struct {
	gorm.Model
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description" gorm:"type:text"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}
