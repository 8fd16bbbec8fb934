package courseValidator

import (
	"strings"

	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

// SubjectID validates the subject id in the URL
func SubjectID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "subjectId", "subjectID", "Subject")
	}
}

// CreateSubject validator middleware, shared by create and update
func CreateSubject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Level       string `json:"level"`
			Category    string `json:"category"`
			IconURL     string `json:"icon_url"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Name) == "" {
			errors["name"] = "Name is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubject", reqData)
		return c.Next()
	}
}
