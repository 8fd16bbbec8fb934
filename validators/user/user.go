package userValidator

import (
	"strings"
	"time"

	"elearn/middleware"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfile validator middleware
func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name              string     `json:"name"`
			Bio               string     `json:"bio"`
			PhoneNumber       string     `json:"phone_number"`
			Address           string     `json:"address"`
			DateOfBirth       *time.Time `json:"date_of_birth"`
			ProfilePictureURL string     `json:"profile_picture_url"`
			InstitutionName   string     `json:"institution_name"`
			ExaminationTypeID *uint      `json:"examination_type_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Name != "" && len(strings.TrimSpace(reqData.Name)) < 2 {
			errors["name"] = "Name must be at least 2 characters long!"
		}
		if reqData.DateOfBirth != nil && reqData.DateOfBirth.After(time.Now()) {
			errors["date_of_birth"] = "Date of birth cannot be in the future!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}

// CreateExaminationType validator middleware
func CreateExaminationType() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name        string `json:"name"`
			Description string `json:"description"`
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

		c.Locals("validatedExaminationType", reqData)
		return c.Next()
	}
}
