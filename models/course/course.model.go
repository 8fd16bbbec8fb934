package course

import "gorm.io/gorm"

// Course represents a learning course owned by a single instructor
type Course struct {
	gorm.Model
	Title        string  `json:"title"`
	Description  string  `json:"description" gorm:"type:text"`
	InstructorID uint    `json:"instructor_id" gorm:"index;not null"`
	SubjectID    *uint   `json:"subject_id" gorm:"index"`
	Price        float64 `json:"price" gorm:"default:0"`
	Category     string  `json:"category"`
	Level        string  `json:"level"`
	Duration     int     `json:"duration" gorm:"default:2"` // duration in hours
	ThumbnailURL string  `json:"thumbnail_url"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`
	IsDeleted    bool    `json:"-" gorm:"default:false"`
}

// Module represents an ordered section within a course
type Module struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsDeleted   bool   `json:"-" gorm:"default:false"`
}

// Lesson represents an ordered content unit within a module
type Lesson struct {
	gorm.Model
	ModuleID   uint   `json:"module_id" gorm:"index;not null"`
	Title      string `json:"title"`
	Content    string `json:"content" gorm:"type:text"`
	VideoURL   string `json:"video_url"`
	Duration   int    `json:"duration" gorm:"default:120"` // duration in seconds
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}
