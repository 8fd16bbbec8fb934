package progress

import (
	"time"

	"gorm.io/gorm"
)

// CourseProgress tracks a student's completion state in a course, unique per
// (student, course). The completed-lesson set lives in CompletedLesson rows.
type CourseProgress struct {
	gorm.Model
	StudentID            uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_course_progress_student_course"`
	CourseID             uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_course_progress_student_course"`
	LastAccessedLessonID *uint      `json:"last_accessed_lesson_id"`
	ProgressPercentage   int        `json:"progress_percentage" gorm:"default:0"` // 0-100
	IsCompleted          bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt          *time.Time `json:"completed_at"`
}

// CompletedLesson is one lesson in a student's completed set for a course
type CompletedLesson struct {
	gorm.Model
	CourseProgressID uint `json:"course_progress_id" gorm:"not null;uniqueIndex:idx_completed_progress_lesson"`
	LessonID         uint `json:"lesson_id" gorm:"not null;uniqueIndex:idx_completed_progress_lesson"`
}

// LessonProgress tracks per-lesson playback state, unique per (student, lesson)
type LessonProgress struct {
	gorm.Model
	StudentID    uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_lesson_progress_student_lesson"`
	LessonID     uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_student_lesson"`
	IsCompleted  bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at"`
	TimeSpent    int        `json:"time_spent" gorm:"default:0"`    // seconds
	LastPosition int        `json:"last_position" gorm:"default:0"` // video position, seconds
}

// ExamProgress tracks a student's best result on an exam, unique per (student, exam)
type ExamProgress struct {
	gorm.Model
	StudentID     uint  `json:"student_id" gorm:"not null;uniqueIndex:idx_exam_progress_student_exam"`
	ExamID        uint  `json:"exam_id" gorm:"not null;uniqueIndex:idx_exam_progress_student_exam"`
	BestScore     *int  `json:"best_score"`
	LastAttemptID *uint `json:"last_attempt_id"`
	AttemptCount  int   `json:"attempt_count" gorm:"default:0"`
}
