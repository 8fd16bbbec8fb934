package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"
	courseModels "elearn/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// loadOwnedModule fetches a module of a course the user instructs
func loadOwnedModule(db *gorm.DB, courseID, moduleID int, user models.User) (courseModels.Module, int) {
	var module courseModels.Module

	_, status := loadOwnedCourse(db, courseID, user)
	if status != fiber.StatusOK {
		return module, status
	}

	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return module, fiber.StatusNotFound
	}
	return module, fiber.StatusOK
}

func CreateLesson(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	db := database.Database.Db

	module, status := loadOwnedModule(db, courseID, moduleID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can add lessons!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		VideoURL   string `json:"video_url"`
		Duration   int    `json:"duration"`
		OrderIndex int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson := courseModels.Lesson{
		ModuleID:   module.ID,
		Title:      reqData.Title,
		Content:    reqData.Content,
		VideoURL:   reqData.VideoURL,
		Duration:   reqData.Duration,
		OrderIndex: reqData.OrderIndex,
	}
	if lesson.Duration == 0 {
		lesson.Duration = 120
	}

	if err := db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

func ListLessons(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	db := database.Database.Db

	var module courseModels.Module
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, courseID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	var lessons []courseModels.Lesson
	if err := db.Where("module_id = ? AND is_deleted = ?", moduleID, false).Order("order_index asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}

func UpdateLesson(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)
	lessonID := c.Locals("lessonID").(int)

	db := database.Database.Db

	_, status := loadOwnedModule(db, courseID, moduleID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can update lessons!", nil)
	}

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND module_id = ? AND is_deleted = ?", lessonID, moduleID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		Title      string `json:"title"`
		Content    string `json:"content"`
		VideoURL   string `json:"video_url"`
		Duration   int    `json:"duration"`
		OrderIndex int    `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{
		"title":       reqData.Title,
		"content":     reqData.Content,
		"video_url":   reqData.VideoURL,
		"order_index": reqData.OrderIndex,
	}
	if reqData.Duration > 0 {
		updates["duration"] = reqData.Duration
	}

	if err := db.Model(&lesson).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)
	lessonID := c.Locals("lessonID").(int)

	db := database.Database.Db

	_, status := loadOwnedModule(db, courseID, moduleID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can delete lessons!", nil)
	}

	var lesson courseModels.Lesson
	if err := db.Where("id = ? AND module_id = ? AND is_deleted = ?", lessonID, moduleID, false).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if err := db.Model(&lesson).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
