package examController

import (
	"fmt"
	"time"

	"elearn/database"
	"elearn/middleware"
	courseModels "elearn/models/course"
	examModels "elearn/models/exam"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// loadOwnedAssignment fetches an assignment the user's course owns
func loadOwnedAssignment(db *gorm.DB, assignmentID int, userID uint) (examModels.Assignment, int) {
	var assignment examModels.Assignment
	if err := db.Where("id = ? AND is_deleted = ?", assignmentID, false).First(&assignment).Error; err != nil {
		return assignment, fiber.StatusNotFound
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", assignment.CourseID, false).First(&course).Error; err != nil {
		return assignment, fiber.StatusNotFound
	}
	if course.InstructorID != userID {
		return assignment, fiber.StatusForbidden
	}
	return assignment, fiber.StatusOK
}

func CreateAssignment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if course.InstructorID != user.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can create assignments!", nil)
	}

	reqData, ok := c.Locals("validatedAssignment").(*struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		DueDate     time.Time `json:"due_date"`
		TotalPoints int       `json:"total_points"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	assignment := examModels.Assignment{
		CourseID:    uint(courseID),
		Title:       reqData.Title,
		Description: reqData.Description,
		DueDate:     reqData.DueDate,
		TotalPoints: reqData.TotalPoints,
	}

	if err := db.Create(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment created successfully!", assignment)
}

func ListAssignments(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	query := db.Where("course_id = ? AND is_deleted = ?", courseID, false)
	if course.InstructorID != user.ID {
		if !isEnrolled(db, user.ID, course.ID) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
		}
		query = query.Where("is_published = ?", true)
	}

	var assignments []examModels.Assignment
	if err := query.Order("due_date asc").Find(&assignments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch assignments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignments fetched successfully!", assignments)
}

func UpdateAssignment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	db := database.Database.Db

	assignment, status := loadOwnedAssignment(db, assignmentID, user.ID)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can update this assignment!", nil)
	}

	reqData, ok := c.Locals("validatedAssignment").(*struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		DueDate     time.Time `json:"due_date"`
		TotalPoints int       `json:"total_points"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{
		"title":        reqData.Title,
		"description":  reqData.Description,
		"due_date":     reqData.DueDate,
		"total_points": reqData.TotalPoints,
	}

	if err := db.Model(&assignment).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment updated successfully!", assignment)
}

func PublishAssignment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	db := database.Database.Db

	assignment, status := loadOwnedAssignment(db, assignmentID, user.ID)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can publish this assignment!", nil)
	}

	if err := db.Model(&assignment).Update("is_published", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment published successfully!", assignment)
}

func DeleteAssignment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	db := database.Database.Db

	assignment, status := loadOwnedAssignment(db, assignmentID, user.ID)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can delete this assignment!", nil)
	}

	tx := db.Begin()
	if err := tx.Model(&examModels.AssignmentQuestion{}).Where("assignment_id = ?", assignment.ID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete assignment!", nil)
	}
	if err := tx.Model(&assignment).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete assignment!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment deleted successfully!", nil)
}

func AddAssignmentQuestion(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	db := database.Database.Db

	assignment, status := loadOwnedAssignment(db, assignmentID, user.ID)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can add questions!", nil)
	}

	reqData, ok := c.Locals("validatedQuestion").(*QuestionInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	question := examModels.AssignmentQuestion{
		AssignmentID: assignment.ID,
		QuestionText: reqData.QuestionText,
		QuestionType: reqData.QuestionType,
		Points:       reqData.Marks,
		OrderIndex:   reqData.OrderIndex,
	}

	tx := db.Begin()
	if err := tx.Create(&question).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}
	for _, ch := range reqData.Choices {
		choice := examModels.AssignmentChoice{
			QuestionID: question.ID,
			ChoiceText: ch.ChoiceText,
			IsCorrect:  ch.IsCorrect,
		}
		if err := tx.Create(&choice).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", question)
}

// SubmitAssignment accepts a student's single full submission; resubmission
// and late submission are conflicts.
func SubmitAssignment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	db := database.Database.Db

	var assignment examModels.Assignment
	if err := db.Where("id = ? AND is_deleted = ? AND is_published = ?", assignmentID, false, true).First(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	if !isEnrolled(db, user.ID, assignment.CourseID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	now := time.Now()
	if now.After(assignment.DueDate) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Assignment due date has passed!", nil)
	}

	var existing examModels.AssignmentSubmission
	if err := db.Where("assignment_id = ? AND student_id = ?", assignment.ID, user.ID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Assignment already submitted!", nil)
	}

	reqData := new(struct {
		Answers []AnswerInput `json:"answers"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var questions []examModels.AssignmentQuestion
	db.Where("assignment_id = ? AND is_deleted = ?", assignment.ID, false).Find(&questions)

	questionByID := make(map[uint]examModels.AssignmentQuestion, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	seen := make(map[uint]bool, len(reqData.Answers))
	var missing, extra []uint
	for _, a := range reqData.Answers {
		if seen[a.QuestionID] {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
				fmt.Sprintf("Question %d answered more than once!", a.QuestionID), nil)
		}
		seen[a.QuestionID] = true
		if _, ok := questionByID[a.QuestionID]; !ok {
			extra = append(extra, a.QuestionID)
		}
	}
	for _, q := range questions {
		if !seen[q.ID] {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "All questions must be answered exactly once!", fiber.Map{
			"missing_questions": missing,
			"extra_questions":   extra,
		})
	}

	score := 0
	pending := 0

	tx := db.Begin()

	submission := examModels.AssignmentSubmission{
		AssignmentID: assignment.ID,
		StudentID:    user.ID,
		SubmittedAt:  now,
	}
	if err := tx.Create(&submission).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Assignment already submitted!", nil)
	}

	for _, a := range reqData.Answers {
		question := questionByID[a.QuestionID]

		answer := examModels.AssignmentAnswer{
			SubmissionID: submission.ID,
			QuestionID:   a.QuestionID,
			AnswerText:   a.AnswerText,
			ChoiceID:     a.ChoiceID,
		}

		if question.QuestionType.AutoGradable() {
			points := 0
			if a.ChoiceID != nil {
				var choice examModels.AssignmentChoice
				if err := tx.Where("id = ? AND question_id = ? AND is_deleted = ?", *a.ChoiceID, question.ID, false).
					First(&choice).Error; err == nil && choice.IsCorrect {
					points = question.Points
				}
			}
			answer.PointsObtained = &points
			answer.IsGraded = true
			score += points
		} else {
			pending++
		}

		if err := tx.Create(&answer).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit assignment!", nil)
		}
	}

	if score > assignment.TotalPoints {
		score = assignment.TotalPoints
	}

	submission.Score = score
	submission.IsGraded = pending == 0

	if err := tx.Save(&submission).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit assignment!", nil)
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment submitted!", fiber.Map{
		"submission":      submission,
		"pending_grading": pending,
	})
}

// GradeSubmission lets the instructor grade the remaining free-text answers
// of one submission and attach feedback.
func GradeSubmission(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	submissionID := c.Locals("submissionID").(int)

	db := database.Database.Db

	var submission examModels.AssignmentSubmission
	if err := db.Where("id = ?", submissionID).First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	assignment, status := loadOwnedAssignment(db, int(submission.AssignmentID), user.ID)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can grade submissions!", nil)
	}

	reqData := new(struct {
		Feedback string `json:"feedback"`
		Grades   []struct {
			AnswerID uint `json:"answer_id"`
			Points   int  `json:"points"`
		} `json:"grades"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	tx := db.Begin()

	for _, g := range reqData.Grades {
		var answer examModels.AssignmentAnswer
		if err := tx.Where("id = ? AND submission_id = ?", g.AnswerID, submission.ID).First(&answer).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, fmt.Sprintf("Answer %d not found!", g.AnswerID), nil)
		}

		var question examModels.AssignmentQuestion
		if err := tx.Where("id = ?", answer.QuestionID).First(&question).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
		}

		if g.Points < 0 || g.Points > question.Points {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
				fmt.Sprintf("Points for answer %d must be between 0 and %d!", g.AnswerID, question.Points), nil)
		}

		points := g.Points
		answer.PointsObtained = &points
		answer.IsGraded = true

		if err := tx.Save(&answer).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade submission!", nil)
		}
	}

	var ungraded int64
	tx.Model(&examModels.AssignmentAnswer{}).Where("submission_id = ? AND is_graded = ?", submission.ID, false).Count(&ungraded)

	if ungraded == 0 {
		var total int64
		tx.Model(&examModels.AssignmentAnswer{}).Where("submission_id = ?", submission.ID).
			Select("COALESCE(SUM(points_obtained), 0)").Scan(&total)

		score := int(total)
		if score > assignment.TotalPoints {
			score = assignment.TotalPoints
		}

		submission.Score = score
		submission.IsGraded = true
	}
	submission.Feedback = reqData.Feedback

	if err := tx.Save(&submission).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade submission!", nil)
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded!", submission)
}

// ListSubmissions lists all submissions of an assignment for the instructor
func ListSubmissions(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	db := database.Database.Db

	assignment, status := loadOwnedAssignment(db, assignmentID, user.ID)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can list submissions!", nil)
	}

	var submissions []examModels.AssignmentSubmission
	if err := db.Where("assignment_id = ?", assignment.ID).Order("submitted_at desc").Find(&submissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", submissions)
}
