package models

import "gorm.io/gorm"

// Subject is a catalog taxonomy courses can be tagged with
type Subject struct {
	gorm.Model
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description" gorm:"type:text"`
	Level       string `json:"level"`    // Beginner, Intermediate, Advanced
	Category    string `json:"category"` // STEM, Humanities, Languages
	IconURL     string `json:"icon_url"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}
