package exam

import (
	"time"

	"gorm.io/gorm"
)

// QuestionType enumerates the supported question kinds
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
)

// ValidQuestionType reports whether t is a known question type
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionShortAnswer, QuestionEssay:
		return true
	}
	return false
}

// AutoGradable reports whether answers of this type are graded by choice matching
func (t QuestionType) AutoGradable() bool {
	return t == QuestionMultipleChoice || t == QuestionTrueFalse
}

// Exam is a timed examination owned by a course
type Exam struct {
	gorm.Model
	CourseID     uint      `json:"course_id" gorm:"index;not null"`
	Title        string    `json:"title"`
	Description  string    `json:"description" gorm:"type:text"`
	Duration     int       `json:"duration" gorm:"default:60"` // minutes per attempt
	TotalMarks   int       `json:"total_marks" gorm:"not null"`
	PassingMarks int       `json:"passing_marks" gorm:"not null"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	IsPublished  bool      `json:"is_published" gorm:"default:false"`
	IsDeleted    bool      `json:"-" gorm:"default:false"`
}

// Question belongs to an exam, ordered, worth a fixed number of marks
type Question struct {
	gorm.Model
	ExamID       uint         `json:"exam_id" gorm:"index;not null"`
	QuestionText string       `json:"question_text" gorm:"type:text"`
	QuestionType QuestionType `json:"question_type" gorm:"not null"`
	Marks        int          `json:"marks" gorm:"not null"`
	OrderIndex   int          `json:"order_index" gorm:"default:0"`
	IsDeleted    bool         `json:"-" gorm:"default:false"`

	Choices []Choice `json:"choices" gorm:"foreignKey:QuestionID"`
}

// Choice is an answer option for choice-based questions
type Choice struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	ChoiceText string `json:"choice_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}
