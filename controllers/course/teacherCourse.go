package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"
	examModels "elearn/models/exam"

	"github.com/gofiber/fiber/v2"
)

func CreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title        string  `json:"title"`
		Description  string  `json:"description"`
		Price        float64 `json:"price"`
		Category     string  `json:"category"`
		Level        string  `json:"level"`
		Duration     int     `json:"duration"`
		ThumbnailURL string  `json:"thumbnail_url"`
		SubjectID    *uint   `json:"subject_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if reqData.SubjectID != nil {
		var subject models.Subject
		if err := db.Where("id = ? AND is_deleted = ?", *reqData.SubjectID, false).First(&subject).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Subject not found!", nil)
		}
	}

	course := courseModels.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		InstructorID: user.ID,
		Price:        reqData.Price,
		Category:     reqData.Category,
		Level:        reqData.Level,
		Duration:     reqData.Duration,
		ThumbnailURL: reqData.ThumbnailURL,
		SubjectID:    reqData.SubjectID,
	}
	if course.Duration == 0 {
		course.Duration = 2
	}

	if err := db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func UpdateCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	course, status := loadOwnedCourse(db, courseID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can update this course!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title        string  `json:"title"`
		Description  string  `json:"description"`
		Price        float64 `json:"price"`
		Category     string  `json:"category"`
		Level        string  `json:"level"`
		Duration     int     `json:"duration"`
		ThumbnailURL string  `json:"thumbnail_url"`
		SubjectID    *uint   `json:"subject_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{
		"title":       reqData.Title,
		"description": reqData.Description,
		"price":       reqData.Price,
		"category":    reqData.Category,
		"level":       reqData.Level,
	}
	if reqData.Duration > 0 {
		updates["duration"] = reqData.Duration
	}
	if reqData.ThumbnailURL != "" {
		updates["thumbnail_url"] = reqData.ThumbnailURL
	}
	if reqData.SubjectID != nil {
		updates["subject_id"] = reqData.SubjectID
	}

	if err := db.Model(&course).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse soft-deletes a course and cascades to its modules, lessons,
// exams and assignments.
func DeleteCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	course, status := loadOwnedCourse(db, courseID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can delete this course!", nil)
	}

	tx := db.Begin()

	var moduleIDs []uint
	tx.Model(&courseModels.Module{}).Where("course_id = ?", course.ID).Pluck("id", &moduleIDs)

	if len(moduleIDs) > 0 {
		if err := tx.Model(&courseModels.Lesson{}).Where("module_id IN ?", moduleIDs).Update("is_deleted", true).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
		}
	}

	for _, step := range []error{
		tx.Model(&courseModels.Module{}).Where("course_id = ?", course.ID).Update("is_deleted", true).Error,
		tx.Model(&examModels.Exam{}).Where("course_id = ?", course.ID).Update("is_deleted", true).Error,
		tx.Model(&examModels.Assignment{}).Where("course_id = ?", course.ID).Update("is_deleted", true).Error,
		tx.Model(&course).Update("is_deleted", true).Error,
	} {
		if step != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
		}
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

func PublishCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	db := database.Database.Db

	course, status := loadOwnedCourse(db, courseID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can publish this course!", nil)
	}

	if err := db.Model(&course).Update("is_published", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}
