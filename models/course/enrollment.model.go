package course

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentEnrolled  = "ENROLLED"
	EnrollmentCompleted = "COMPLETED"
)

// Enrollment tracks a student's membership in a course, unique per (student, course)
type Enrollment struct {
	gorm.Model
	StudentID   uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID    uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	Status      string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, COMPLETED
	Progress    float64    `json:"progress" gorm:"default:0"`        // completion percentage (0-100)
	CompletedAt *time.Time `json:"completed_at"`
}

// CourseRating is a student's rating and review of a course, unique per (student, course)
type CourseRating struct {
	gorm.Model
	StudentID uint   `json:"student_id" gorm:"not null;uniqueIndex:idx_rating_student_course"`
	CourseID  uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_rating_student_course"`
	Rating    int    `json:"rating" gorm:"not null"` // 1-5
	Review    string `json:"review" gorm:"type:text"`
}
