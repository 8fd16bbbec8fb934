package progressValidator

import (
	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

// LessonProgress validator middleware for playback updates
func LessonProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TimeSpent    int `json:"time_spent"`
			LastPosition int `json:"last_position"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.TimeSpent < 0 {
			errors["time_spent"] = "Time spent cannot be negative!"
		}
		if reqData.LastPosition < 0 {
			errors["last_position"] = "Last position cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLessonProgress", reqData)
		return c.Next()
	}
}
