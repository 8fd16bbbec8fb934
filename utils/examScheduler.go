package utils

import (
	"log"
	"time"

	"elearn/database"
	examModels "elearn/models/exam"
	progressModels "elearn/models/progress"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeExamScheduler sets up the abandoned-attempt sweeper
func InitializeExamScheduler() {
	log.Println("[EXAM-SCHEDULER] Initializing exam scheduler...")

	c := cron.New()

	// Sweep every minute for attempts past their deadline
	c.AddFunc("* * * * *", func() {
		TimeOutExpiredAttempts()
	})

	c.Start()
	log.Println("[EXAM-SCHEDULER] Exam scheduler started - sweeps every minute")
}

// TimeOutExpiredAttempts finalizes in-progress attempts whose duration or
// exam window has run out. Abandoned attempts never stay open forever.
func TimeOutExpiredAttempts() {
	db := database.Database.Db
	now := time.Now()

	var attempts []examModels.ExamAttempt
	if err := db.Where("status = ?", examModels.AttemptInProgress).Find(&attempts).Error; err != nil {
		log.Printf("[EXAM-SCHEDULER] Error fetching open attempts: %v", err)
		return
	}

	expired := 0
	for _, attempt := range attempts {
		var exam examModels.Exam
		if err := db.Where("id = ?", attempt.ExamID).First(&exam).Error; err != nil {
			log.Printf("[EXAM-SCHEDULER] Error fetching exam %d: %v", attempt.ExamID, err)
			continue
		}

		deadline := attempt.StartTime.Add(time.Duration(exam.Duration) * time.Minute)
		if !exam.EndTime.IsZero() && exam.EndTime.Before(deadline) {
			deadline = exam.EndTime
		}
		if now.Before(deadline) {
			continue
		}

		end := now
		if err := db.Model(&attempt).Updates(map[string]interface{}{
			"status":   examModels.AttemptTimedOut,
			"end_time": &end,
		}).Error; err != nil {
			log.Printf("[EXAM-SCHEDULER] Error timing out attempt %d: %v", attempt.ID, err)
			continue
		}

		recordTimedOutAttempt(db, attempt)
		expired++
	}

	if expired > 0 {
		log.Printf("[EXAM-SCHEDULER] Timed out %d expired attempts", expired)
	}
}

// recordTimedOutAttempt folds a timed-out attempt into the student's exam
// progress under the same lock grading uses.
func recordTimedOutAttempt(db *gorm.DB, attempt examModels.ExamAttempt) {
	unlock := ProgressLocks.Lock(ProgressKey("exam", attempt.StudentID, attempt.ExamID))
	defer unlock()

	err := db.Transaction(func(tx *gorm.DB) error {
		var progress progressModels.ExamProgress
		if err := tx.Where(progressModels.ExamProgress{StudentID: attempt.StudentID, ExamID: attempt.ExamID}).
			FirstOrCreate(&progress).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&examModels.ExamAttempt{}).
			Where("student_id = ? AND exam_id = ? AND status <> ?", attempt.StudentID, attempt.ExamID, examModels.AttemptInProgress).
			Count(&count).Error; err != nil {
			return err
		}

		progress.AttemptCount = int(count)
		progress.LastAttemptID = &attempt.ID
		return tx.Save(&progress).Error
	})
	if err != nil {
		log.Printf("[EXAM-SCHEDULER] Error updating exam progress for attempt %d: %v", attempt.ID, err)
	}
}
