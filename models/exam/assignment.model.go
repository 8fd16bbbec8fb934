package exam

import (
	"time"

	"gorm.io/gorm"
)

// Assignment is coursework with a due date, owned by a course
type Assignment struct {
	gorm.Model
	CourseID    uint      `json:"course_id" gorm:"index;not null"`
	Title       string    `json:"title"`
	Description string    `json:"description" gorm:"type:text"`
	DueDate     time.Time `json:"due_date"`
	TotalPoints int       `json:"total_points" gorm:"not null"`
	IsPublished bool      `json:"is_published" gorm:"default:false"`
	IsDeleted   bool      `json:"-" gorm:"default:false"`
}

// AssignmentQuestion belongs to an assignment, ordered, worth fixed points
type AssignmentQuestion struct {
	gorm.Model
	AssignmentID uint         `json:"assignment_id" gorm:"index;not null"`
	QuestionText string       `json:"question_text" gorm:"type:text"`
	QuestionType QuestionType `json:"question_type" gorm:"not null"`
	Points       int          `json:"points" gorm:"not null"`
	OrderIndex   int          `json:"order_index" gorm:"default:0"`
	IsDeleted    bool         `json:"-" gorm:"default:false"`

	Choices []AssignmentChoice `json:"choices" gorm:"foreignKey:QuestionID"`
}

// AssignmentChoice is an answer option for choice-based assignment questions
type AssignmentChoice struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	ChoiceText string `json:"choice_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}

// AssignmentSubmission is a student's single submission, unique per (assignment, student)
type AssignmentSubmission struct {
	gorm.Model
	AssignmentID uint      `json:"assignment_id" gorm:"not null;uniqueIndex:idx_submission_assignment_student"`
	StudentID    uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_submission_assignment_student"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Score        int       `json:"score" gorm:"default:0"`
	Feedback     string    `json:"feedback" gorm:"type:text"`
	IsGraded     bool      `json:"is_graded" gorm:"default:false"`

	Answers []AssignmentAnswer `json:"answers" gorm:"foreignKey:SubmissionID"`
}

// AssignmentAnswer records a response to one assignment question
type AssignmentAnswer struct {
	gorm.Model
	SubmissionID   uint   `json:"submission_id" gorm:"index;not null"`
	QuestionID     uint   `json:"question_id" gorm:"index;not null"`
	AnswerText     string `json:"answer_text" gorm:"type:text"`
	ChoiceID       *uint  `json:"choice_id"`
	PointsObtained *int   `json:"points_obtained"` // nil until graded
	IsGraded       bool   `json:"is_graded" gorm:"default:false"`
}
