package exam

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttemptStatus is the lifecycle state of an exam attempt
type AttemptStatus string

const (
	AttemptInProgress     AttemptStatus = "in_progress"
	AttemptCompleted      AttemptStatus = "completed"
	AttemptPendingGrading AttemptStatus = "pending_grading"
	AttemptTimedOut       AttemptStatus = "timed_out"
)

// Terminal reports whether no further answer submissions are accepted
func (s AttemptStatus) Terminal() bool {
	return s != AttemptInProgress
}

// ExamAttempt is one instance of a student taking an exam. Multiple attempts
// per (student, exam) are allowed and numbered; the best score is tracked in
// progress.ExamProgress.
type ExamAttempt struct {
	gorm.Model
	ExamID        uint          `json:"exam_id" gorm:"index;not null"`
	StudentID     uint          `json:"student_id" gorm:"index;not null"`
	AttemptNumber int           `json:"attempt_number" gorm:"default:1"`
	Status        AttemptStatus `json:"status" gorm:"default:'in_progress';index"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time"`
	Score         int           `json:"score" gorm:"default:0"`
	IsCompleted   bool          `json:"is_completed" gorm:"default:false"`
	SessionData   datatypes.JSON `json:"session_data"` // client info captured at start

	Answers []Answer `json:"answers" gorm:"foreignKey:AttemptID"`
}

// Answer records a student's response to one question within an attempt
type Answer struct {
	gorm.Model
	AttemptID     uint   `json:"attempt_id" gorm:"index;not null"`
	QuestionID    uint   `json:"question_id" gorm:"index;not null"`
	AnswerText    string `json:"answer_text" gorm:"type:text"`
	ChoiceID      *uint  `json:"choice_id"` // set for choice-based questions
	MarksObtained *int   `json:"marks_obtained"` // nil until graded
	IsGraded      bool   `json:"is_graded" gorm:"default:false"`
	GradedBy      *uint  `json:"graded_by"` // teacher ID for manual grading
	Feedback      string `json:"feedback" gorm:"type:text"`
}
