package examController

import (
	"fmt"

	"elearn/database"
	"elearn/middleware"
	examModels "elearn/models/exam"
	"elearn/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// QuestionInput is the structured form a question arrives in, either inline
// or from a remote question bank.
type QuestionInput struct {
	QuestionText string                 `json:"question_text"`
	QuestionType examModels.QuestionType `json:"question_type"`
	Marks        int                    `json:"marks"`
	OrderIndex   int                    `json:"order_index"`
	Choices      []ChoiceInput          `json:"choices"`
}

type ChoiceInput struct {
	ChoiceText string `json:"choice_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// validateQuestionInput checks one structured question for consistency
func validateQuestionInput(q QuestionInput) string {
	if q.QuestionText == "" {
		return "Question text is required!"
	}
	if !examModels.ValidQuestionType(q.QuestionType) {
		return "Unknown question type!"
	}
	if q.Marks <= 0 {
		return "Marks must be greater than 0!"
	}
	if q.QuestionType.AutoGradable() {
		if len(q.Choices) < 2 {
			return "Choice questions need at least two choices!"
		}
		correct := 0
		for _, ch := range q.Choices {
			if ch.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return "Choice questions need exactly one correct choice!"
		}
	}
	return ""
}

// createQuestion persists a question and its choices inside tx
func createQuestion(tx *gorm.DB, examID uint, q QuestionInput) (examModels.Question, error) {
	question := examModels.Question{
		ExamID:       examID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Marks:        q.Marks,
		OrderIndex:   q.OrderIndex,
	}
	if err := tx.Create(&question).Error; err != nil {
		return question, err
	}

	for _, ch := range q.Choices {
		choice := examModels.Choice{
			QuestionID: question.ID,
			ChoiceText: ch.ChoiceText,
			IsCorrect:  ch.IsCorrect,
		}
		if err := tx.Create(&choice).Error; err != nil {
			return question, err
		}
	}
	return question, nil
}

func AddQuestion(c *fiber.Ctx) error {
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
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can add questions!", nil)
	}

	reqData, ok := c.Locals("validatedQuestion").(*QuestionInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tx := db.Begin()
	question, err := createQuestion(tx, exam.ID, *reqData)
	if err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}
	tx.Commit()

	var choices []examModels.Choice
	db.Where("question_id = ?", question.ID).Find(&choices)
	question.Choices = choices

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", question)
}

func ListQuestions(c *fiber.Ctx) error {
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
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can list questions with answers!", nil)
	}

	var questions []examModels.Question
	if err := db.Where("exam_id = ? AND is_deleted = ?", exam.ID, false).Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	for i := range questions {
		var choices []examModels.Choice
		db.Where("question_id = ? AND is_deleted = ?", questions[i].ID, false).Find(&choices)
		questions[i].Choices = choices
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", questions)
}

func UpdateQuestion(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)
	questionID := c.Locals("questionID").(int)

	db := database.Database.Db

	exam, status := loadOwnedExam(db, examID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can update questions!", nil)
	}

	var question examModels.Question
	if err := db.Where("id = ? AND exam_id = ? AND is_deleted = ?", questionID, exam.ID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuestion").(*QuestionInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	tx := db.Begin()

	updates := map[string]interface{}{
		"question_text": reqData.QuestionText,
		"question_type": reqData.QuestionType,
		"marks":         reqData.Marks,
		"order_index":   reqData.OrderIndex,
	}
	if err := tx.Model(&question).Updates(updates).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	// Replace the choice set wholesale
	if err := tx.Model(&examModels.Choice{}).Where("question_id = ?", question.ID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}
	for _, ch := range reqData.Choices {
		choice := examModels.Choice{
			QuestionID: question.ID,
			ChoiceText: ch.ChoiceText,
			IsCorrect:  ch.IsCorrect,
		}
		if err := tx.Create(&choice).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
		}
	}

	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

func DeleteQuestion(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	examID := c.Locals("examID").(int)
	questionID := c.Locals("questionID").(int)

	db := database.Database.Db

	exam, status := loadOwnedExam(db, examID, user)
	if status == fiber.StatusNotFound {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	if status == fiber.StatusForbidden {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can delete questions!", nil)
	}

	var question examModels.Question
	if err := db.Where("id = ? AND exam_id = ? AND is_deleted = ?", questionID, exam.ID, false).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	tx := db.Begin()
	if err := tx.Model(&examModels.Choice{}).Where("question_id = ?", question.ID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}
	if err := tx.Model(&question).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

// ImportQuestions bulk-loads questions from the request body or, when a
// source URL is given, from a remote question bank serving the same
// structured format. Replaces page scraping in the request path.
func ImportQuestions(c *fiber.Ctx) error {
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
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Only the course instructor can import questions!", nil)
	}

	reqData := new(struct {
		SourceURL string          `json:"source_url"`
		Questions []QuestionInput `json:"questions"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	questions := reqData.Questions
	if reqData.SourceURL != "" {
		fetched, err := utils.FetchQuestionBank(reqData.SourceURL)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to fetch question bank: "+err.Error(), nil)
		}
		for _, q := range fetched {
			choices := make([]ChoiceInput, len(q.Choices))
			for i, ch := range q.Choices {
				choices[i] = ChoiceInput{ChoiceText: ch.ChoiceText, IsCorrect: ch.IsCorrect}
			}
			questions = append(questions, QuestionInput{
				QuestionText: q.QuestionText,
				QuestionType: examModels.QuestionType(q.QuestionType),
				Marks:        q.Marks,
				OrderIndex:   q.OrderIndex,
				Choices:      choices,
			})
		}
	}

	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No questions to import!", nil)
	}

	// Validate everything before writing anything
	for i, q := range questions {
		if msg := validateQuestionInput(q); msg != "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
				fmt.Sprintf("Question %d: %s", i+1, msg), nil)
		}
	}

	tx := db.Begin()
	created := make([]examModels.Question, 0, len(questions))
	for _, q := range questions {
		question, err := createQuestion(tx, exam.ID, q)
		if err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to import questions!", nil)
		}
		created = append(created, question)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Questions imported successfully!", fiber.Map{
		"imported": len(created),
	})
}
