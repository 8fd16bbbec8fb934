package controllers

import (
	"elearn/database"
	"elearn/middleware"
	"elearn/models"

	"github.com/gofiber/fiber/v2"
)

func ListSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject
	if err := database.Database.Db.Where("is_deleted = ?", false).Order("name asc").Find(&subjects).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subjects!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subjects fetched successfully!", subjects)
}

func CreateSubject(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSubject").(*struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Level       string `json:"level"`
		Category    string `json:"category"`
		IconURL     string `json:"icon_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	if err := db.Where("name = ? AND is_deleted = ?", reqData.Name, false).First(&models.Subject{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Subject already exists!", nil)
	}

	subject := models.Subject{
		Name:        reqData.Name,
		Description: reqData.Description,
		Level:       reqData.Level,
		Category:    reqData.Category,
		IconURL:     reqData.IconURL,
	}

	if err := db.Create(&subject).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create subject!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Subject created successfully!", subject)
}

func UpdateSubject(c *fiber.Ctx) error {
	subjectID := c.Locals("subjectID").(int)

	db := database.Database.Db

	var subject models.Subject
	if err := db.Where("id = ? AND is_deleted = ?", subjectID, false).First(&subject).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Subject not found!", nil)
	}

	reqData, ok := c.Locals("validatedSubject").(*struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Level       string `json:"level"`
		Category    string `json:"category"`
		IconURL     string `json:"icon_url"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{
		"name":        reqData.Name,
		"description": reqData.Description,
		"level":       reqData.Level,
		"category":    reqData.Category,
		"icon_url":    reqData.IconURL,
	}

	if err := db.Model(&subject).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update subject!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subject updated successfully!", subject)
}

func DeleteSubject(c *fiber.Ctx) error {
	subjectID := c.Locals("subjectID").(int)

	db := database.Database.Db

	var subject models.Subject
	if err := db.Where("id = ? AND is_deleted = ?", subjectID, false).First(&subject).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Subject not found!", nil)
	}

	if err := db.Model(&subject).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete subject!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subject deleted successfully!", nil)
}
