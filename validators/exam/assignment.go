package examValidator

import (
	"strings"
	"time"

	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

// AssignmentID validates the assignment id in the URL
func AssignmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "assignmentId", "assignmentID", "Assignment")
	}
}

// SubmissionID validates the submission id in the URL
func SubmissionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseIDParam(c, "submissionId", "submissionID", "Submission")
	}
}

// CreateAssignment validator middleware, shared by create and update
func CreateAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string    `json:"title"`
			Description string    `json:"description"`
			DueDate     time.Time `json:"due_date"`
			TotalPoints int       `json:"total_points"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.DueDate.IsZero() {
			errors["due_date"] = "Due date is required!"
		}
		if reqData.TotalPoints <= 0 {
			errors["total_points"] = "Total points must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssignment", reqData)
		return c.Next()
	}
}
