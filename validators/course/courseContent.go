package courseValidator

import (
	"strings"

	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

// ModuleID validates the module id in the URL
func ModuleID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "moduleId", "moduleID", "Module")
	}
}

// LessonID validates the lesson id in the URL
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "lessonId", "lessonID", "Lesson")
	}
}

// CreateModule validator middleware, shared by create and update
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  int    `json:"order_index"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// CreateLesson validator middleware, shared by create and update
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title      string `json:"title"`
			Content    string `json:"content"`
			VideoURL   string `json:"video_url"`
			Duration   int    `json:"duration"`
			OrderIndex int    `json:"order_index"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.Duration < 0 {
			errors["duration"] = "Duration cannot be negative!"
		}
		if reqData.OrderIndex < 0 {
			errors["order_index"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}
