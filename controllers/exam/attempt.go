package examController

import (
	"encoding/json"
	"fmt"
	"time"

	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	examModels "elearn/models/exam"
	progressModels "elearn/models/progress"
	"elearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StartAttempt opens a new attempt for an enrolled student. Attempts are
// numbered; starting a new one while another is in progress resumes it.
func StartAttempt(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)

	db := database.Database.Db

	var exam examModels.Exam
	if err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", examID, false, true).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	if !isEnrolled(db, user.ID, exam.CourseID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	now := time.Now()
	if now.Before(exam.StartTime) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Exam has not started yet!", nil)
	}
	if now.After(exam.EndTime) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Exam has already ended!", nil)
	}

	// The resume check and the numbered create run under the per-(student,
	// exam) lock so two concurrent starts cannot both slip past the check
	// and mint the same attempt number
	unlock := utils.ProgressLocks.Lock(utils.ProgressKey("exam", user.ID, exam.ID))
	defer unlock()

	// Resume an open attempt instead of stacking a second one
	var openAttempt examModels.ExamAttempt
	if err := db.Where("exam_id = ? AND student_id = ? AND status = ?", exam.ID, user.ID, examModels.AttemptInProgress).
		First(&openAttempt).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt already in progress.", openAttempt)
	}

	var attemptCount int64
	db.Model(&examModels.ExamAttempt{}).Where("exam_id = ? AND student_id = ?", exam.ID, user.ID).Count(&attemptCount)

	sessionData, _ := json.Marshal(fiber.Map{
		"ip":         c.IP(),
		"user_agent": c.Get("User-Agent"),
	})

	attempt := examModels.ExamAttempt{
		ExamID:        exam.ID,
		StudentID:     user.ID,
		AttemptNumber: int(attemptCount) + 1,
		Status:        examModels.AttemptInProgress,
		StartTime:     now,
		SessionData:   sessionData,
	}

	if err := db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start attempt!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Attempt started!", attempt)
}

// AnswerInput is one answer inside a batch submission
type AnswerInput struct {
	QuestionID uint   `json:"question_id"`
	AnswerText string `json:"answer_text"`
	ChoiceID   *uint  `json:"choice_id"`
}

// SubmitAttempt grades a full batch submission for an attempt. The answer set
// must cover the exam's question IDs exactly once; nothing is written when the
// set is incomplete.
func SubmitAttempt(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	attemptID := c.Locals("attemptID").(int)

	db := database.Database.Db

	var attempt examModels.ExamAttempt
	if err := db.Where("id = ?", attemptID).First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attempt not found!", nil)
	}
	if attempt.StudentID != user.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only submit your own attempts!", nil)
	}
	if attempt.Status.Terminal() {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This attempt has already been submitted!", nil)
	}

	var exam examModels.Exam
	if err := db.Where("id = ?", attempt.ExamID).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	// A submission landing after the time budget ran out is not accepted,
	// even before the sweeper gets to the attempt
	now := time.Now()
	deadline := attempt.StartTime.Add(time.Duration(exam.Duration) * time.Minute)
	if !exam.EndTime.IsZero() && exam.EndTime.Before(deadline) {
		deadline = exam.EndTime
	}
	if now.After(deadline) {
		end := now
		db.Model(&attempt).Updates(map[string]interface{}{
			"status":   examModels.AttemptTimedOut,
			"end_time": &end,
		})
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Attempt time has expired!", nil)
	}

	reqData := new(struct {
		Answers []AnswerInput `json:"answers"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var questions []examModels.Question
	db.Where("exam_id = ? AND is_deleted = ?", exam.ID, false).Find(&questions)

	questionByID := make(map[uint]examModels.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	// The submission must cover every question exactly once
	seen := make(map[uint]bool, len(reqData.Answers))
	var extra, duplicate []uint
	for _, a := range reqData.Answers {
		if seen[a.QuestionID] {
			duplicate = append(duplicate, a.QuestionID)
			continue
		}
		seen[a.QuestionID] = true
		if _, ok := questionByID[a.QuestionID]; !ok {
			extra = append(extra, a.QuestionID)
		}
	}
	var missing []uint
	for _, q := range questions {
		if !seen[q.ID] {
			missing = append(missing, q.ID)
		}
	}

	if len(missing) > 0 || len(extra) > 0 || len(duplicate) > 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "All questions must be answered exactly once!", fiber.Map{
			"missing_questions":   missing,
			"extra_questions":     extra,
			"duplicate_questions": duplicate,
		})
	}

	score := 0
	pending := 0

	tx := db.Begin()

	for _, a := range reqData.Answers {
		question := questionByID[a.QuestionID]

		answer := examModels.Answer{
			AttemptID:  attempt.ID,
			QuestionID: a.QuestionID,
			AnswerText: a.AnswerText,
			ChoiceID:   a.ChoiceID,
		}

		if question.QuestionType.AutoGradable() {
			marks := 0
			if a.ChoiceID != nil {
				var choice examModels.Choice
				if err := tx.Where("id = ? AND question_id = ? AND is_deleted = ?", *a.ChoiceID, question.ID, false).
					First(&choice).Error; err == nil && choice.IsCorrect {
					marks = question.Marks
				}
			}
			answer.MarksObtained = &marks
			answer.IsGraded = true
			score += marks
		} else {
			// Free-text answers wait for manual grading
			pending++
		}

		if err := tx.Create(&answer).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit answers!", nil)
		}
	}

	if score > exam.TotalMarks {
		score = exam.TotalMarks
	}

	attempt.EndTime = &now
	attempt.Score = score
	if pending > 0 {
		attempt.Status = examModels.AttemptPendingGrading
	} else {
		attempt.Status = examModels.AttemptCompleted
		attempt.IsCompleted = true
	}

	if err := tx.Save(&attempt).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit answers!", nil)
	}

	tx.Commit()

	if attempt.Status == examModels.AttemptCompleted {
		updateExamProgress(db, user.ID, exam.ID, attempt)
		go utils.SendExamResultEmail(user.Email, user.Name, exam.Title, attempt.Score, exam.TotalMarks, exam.PassingMarks)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt submitted!", fiber.Map{
		"attempt":         attempt,
		"score":           attempt.Score,
		"pending_grading": pending,
	})
}

// GetAttempt returns one of the student's own attempts with its answers
func GetAttempt(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	attemptID := c.Locals("attemptID").(int)

	db := database.Database.Db

	var attempt examModels.ExamAttempt
	if err := db.Where("id = ? AND student_id = ?", attemptID, user.ID).First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attempt not found!", nil)
	}

	var answers []examModels.Answer
	db.Where("attempt_id = ?", attempt.ID).Find(&answers)
	attempt.Answers = answers

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt fetched successfully!", attempt)
}

// ListMyAttempts lists the student's attempts for one exam
func ListMyAttempts(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)

	db := database.Database.Db

	var attempts []examModels.ExamAttempt
	if err := db.Where("exam_id = ? AND student_id = ?", examID, user.ID).
		Order("attempt_number asc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}

// GradeAnswer lets the course instructor grade a free-text answer. Marks may
// not exceed the question's marks. When the last ungraded answer resolves,
// the attempt completes and the score finalizes.
func GradeAnswer(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	attemptID := c.Locals("attemptID").(int)
	answerID := c.Locals("answerID").(int)

	reqData, ok := c.Locals("validatedGrade").(*struct {
		Marks    int    `json:"marks"`
		Feedback string `json:"feedback"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var attempt examModels.ExamAttempt
	if err := db.Where("id = ?", attemptID).First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attempt not found!", nil)
	}

	exam, status := loadOwnedExam(db, int(attempt.ExamID), user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can grade answers!", nil)
	}

	if attempt.Status != examModels.AttemptPendingGrading {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Attempt is not pending grading!", nil)
	}

	var answer examModels.Answer
	if err := db.Where("id = ? AND attempt_id = ?", answerID, attempt.ID).First(&answer).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Answer not found!", nil)
	}
	if answer.IsGraded {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Answer has already been graded!", nil)
	}

	var question examModels.Question
	if err := db.Where("id = ?", answer.QuestionID).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	if reqData.Marks < 0 || reqData.Marks > question.Marks {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
			fmt.Sprintf("Marks must be between 0 and %d!", question.Marks), nil)
	}

	tx := db.Begin()

	marks := reqData.Marks
	answer.MarksObtained = &marks
	answer.IsGraded = true
	answer.GradedBy = &user.ID
	answer.Feedback = reqData.Feedback

	if err := tx.Save(&answer).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade answer!", nil)
	}

	var ungraded int64
	tx.Model(&examModels.Answer{}).Where("attempt_id = ? AND is_graded = ?", attempt.ID, false).Count(&ungraded)

	if ungraded == 0 {
		var total int64
		tx.Model(&examModels.Answer{}).Where("attempt_id = ?", attempt.ID).
			Select("COALESCE(SUM(marks_obtained), 0)").Scan(&total)

		score := int(total)
		if score > exam.TotalMarks {
			score = exam.TotalMarks
		}

		attempt.Score = score
		attempt.Status = examModels.AttemptCompleted
		attempt.IsCompleted = true

		if err := tx.Save(&attempt).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to finalize attempt!", nil)
		}
	}

	tx.Commit()

	if attempt.Status == examModels.AttemptCompleted {
		updateExamProgress(db, attempt.StudentID, exam.ID, attempt)

		var student models.User
		if err := db.Where("id = ?", attempt.StudentID).First(&student).Error; err == nil {
			go utils.SendExamResultEmail(student.Email, student.Name, exam.Title, attempt.Score, exam.TotalMarks, exam.PassingMarks)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer graded!", fiber.Map{
		"answer":  answer,
		"attempt": attempt,
	})
}

// updateExamProgress folds a finalized attempt into the student's exam
// progress. The read-modify-write is serialized per (student, exam) so
// concurrent finalizations cannot lose the best score.
func updateExamProgress(db *gorm.DB, studentID, examID uint, attempt examModels.ExamAttempt) {
	unlock := utils.ProgressLocks.Lock(utils.ProgressKey("exam", studentID, examID))
	defer unlock()

	db.Transaction(func(tx *gorm.DB) error {
		var ep progressModels.ExamProgress
		if err := tx.Where("student_id = ? AND exam_id = ?", studentID, examID).
			FirstOrCreate(&ep, progressModels.ExamProgress{StudentID: studentID, ExamID: examID}).Error; err != nil {
			return err
		}

		if ep.BestScore == nil || attempt.Score > *ep.BestScore {
			score := attempt.Score
			ep.BestScore = &score
		}
		attemptID := attempt.ID
		ep.LastAttemptID = &attemptID

		var count int64
		tx.Model(&examModels.ExamAttempt{}).
			Where("exam_id = ? AND student_id = ? AND status <> ?", examID, studentID, examModels.AttemptInProgress).
			Count(&count)
		ep.AttemptCount = int(count)

		return tx.Save(&ep).Error
	})
}
