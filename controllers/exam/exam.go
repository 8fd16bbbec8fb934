package examController

import (
	"time"

	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"
	examModels "elearn/models/exam"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// loadOwnedExam fetches an exam and verifies the user instructs its course.
// Exams are course-owned so instructor authorization stays course-scoped.
func loadOwnedExam(db *gorm.DB, examID int, user models.User) (examModels.Exam, int) {
	var exam examModels.Exam
	if err := db.Where("id = ? AND is_deleted = ?", examID, false).First(&exam).Error; err != nil {
		return exam, fiber.StatusNotFound
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", exam.CourseID, false).First(&course).Error; err != nil {
		return exam, fiber.StatusNotFound
	}
	if course.InstructorID != user.ID {
		return exam, fiber.StatusForbidden
	}
	return exam, fiber.StatusOK
}

// isEnrolled reports whether the student is enrolled in the course
func isEnrolled(db *gorm.DB, studentID, courseID uint) bool {
	var enrollment courseModels.Enrollment
	return db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error == nil
}

func CreateExam(c *fiber.Ctx) error {
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
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can create exams!", nil)
	}

	reqData, ok := c.Locals("validatedExam").(*struct {
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		Duration     int       `json:"duration"`
		TotalMarks   int       `json:"total_marks"`
		PassingMarks int       `json:"passing_marks"`
		StartTime    time.Time `json:"start_time"`
		EndTime      time.Time `json:"end_time"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	exam := examModels.Exam{
		CourseID:     uint(courseID),
		Title:        reqData.Title,
		Description:  reqData.Description,
		Duration:     reqData.Duration,
		TotalMarks:   reqData.TotalMarks,
		PassingMarks: reqData.PassingMarks,
		StartTime:    reqData.StartTime,
		EndTime:      reqData.EndTime,
	}
	if exam.Duration == 0 {
		exam.Duration = 60
	}

	if err := db.Create(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam created successfully!", exam)
}

// GetExams lists exams: teachers get exams of their courses, students get
// published exams of courses they are enrolled in.
func GetExams(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var exams []examModels.Exam
	query := db.Model(&examModels.Exam{}).Where("exams.is_deleted = ?", false)

	switch user.Role {
	case models.RoleTeacher:
		query = query.Joins("JOIN courses ON courses.id = exams.course_id").
			Where("courses.instructor_id = ?", user.ID)
	case models.RoleStudent:
		query = query.Joins("JOIN enrollments ON enrollments.course_id = exams.course_id").
			Where("enrollments.student_id = ? AND exams.is_published = ?", user.ID, true)
	}

	if err := query.Order("exams.start_time asc").Find(&exams).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exams!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exams fetched successfully!", exams)
}

func GetExamDetails(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)

	db := database.Database.Db

	var exam examModels.Exam
	if err := db.Where("id = ? AND is_deleted = ?", examID, false).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	var course courseModels.Course
	if err := db.Where("id = ?", exam.CourseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	isInstructor := course.InstructorID == user.ID
	if !isInstructor && user.Role != models.RoleAdmin {
		if !exam.IsPublished || !isEnrolled(db, user.ID, exam.CourseID) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
		}
	}

	var questions []examModels.Question
	db.Where("exam_id = ? AND is_deleted = ?", exam.ID, false).Order("order_index asc").Find(&questions)

	for i := range questions {
		var choices []examModels.Choice
		db.Where("question_id = ? AND is_deleted = ?", questions[i].ID, false).Find(&choices)
		if !isInstructor && user.Role != models.RoleAdmin {
			// Students never see the correct flag
			for j := range choices {
				choices[j].IsCorrect = false
			}
		}
		questions[i].Choices = choices
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam fetched successfully!", fiber.Map{
		"exam":      exam,
		"questions": questions,
	})
}

func UpdateExam(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)

	db := database.Database.Db

	exam, status := loadOwnedExam(db, examID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can update this exam!", nil)
	}

	reqData, ok := c.Locals("validatedExam").(*struct {
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		Duration     int       `json:"duration"`
		TotalMarks   int       `json:"total_marks"`
		PassingMarks int       `json:"passing_marks"`
		StartTime    time.Time `json:"start_time"`
		EndTime      time.Time `json:"end_time"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{
		"title":         reqData.Title,
		"description":   reqData.Description,
		"total_marks":   reqData.TotalMarks,
		"passing_marks": reqData.PassingMarks,
		"start_time":    reqData.StartTime,
		"end_time":      reqData.EndTime,
	}
	if reqData.Duration > 0 {
		updates["duration"] = reqData.Duration
	}

	if err := db.Model(&exam).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam updated successfully!", exam)
}

func PublishExam(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)

	db := database.Database.Db

	exam, status := loadOwnedExam(db, examID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can publish this exam!", nil)
	}

	if err := db.Model(&exam).Update("is_published", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam published successfully!", exam)
}

func DeleteExam(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)

	db := database.Database.Db

	exam, status := loadOwnedExam(db, examID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can delete this exam!", nil)
	}

	tx := db.Begin()
	if err := tx.Model(&examModels.Question{}).Where("exam_id = ?", exam.ID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete exam!", nil)
	}
	if err := tx.Model(&exam).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete exam!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam deleted successfully!", nil)
}

// GetExamResults gives the instructor a per-student summary of attempts
func GetExamResults(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)

	db := database.Database.Db

	exam, status := loadOwnedExam(db, examID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can view exam results!", nil)
	}

	var attempts []examModels.ExamAttempt
	if err := db.Where("exam_id = ?", exam.ID).Order("created_at desc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch results!", nil)
	}

	var completedCount int64
	db.Model(&examModels.ExamAttempt{}).
		Where("exam_id = ? AND status = ?", exam.ID, examModels.AttemptCompleted).Count(&completedCount)

	var avgScore float64
	db.Model(&examModels.ExamAttempt{}).
		Where("exam_id = ? AND status = ?", exam.ID, examModels.AttemptCompleted).
		Select("COALESCE(AVG(score), 0)").Scan(&avgScore)

	var passedCount int64
	db.Model(&examModels.ExamAttempt{}).
		Where("exam_id = ? AND status = ? AND score >= ?", exam.ID, examModels.AttemptCompleted, exam.PassingMarks).
		Count(&passedCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam results fetched successfully!", fiber.Map{
		"attempts":        attempts,
		"completed_count": completedCount,
		"passed_count":    passedCount,
		"average_score":   avgScore,
	})
}
