package utils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ImportedQuestion is the wire format remote question banks serve
type ImportedQuestion struct {
	QuestionText string           `json:"question_text"`
	QuestionType string           `json:"question_type"`
	Marks        int              `json:"marks"`
	OrderIndex   int              `json:"order_index"`
	Choices      []ImportedChoice `json:"choices"`
}

type ImportedChoice struct {
	ChoiceText string `json:"choice_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// FetchQuestionBank downloads a structured question list from url
func FetchQuestionBank(url string) ([]ImportedQuestion, error) {
	client := resty.New().SetTimeout(15 * time.Second)

	resp, err := client.R().
		SetHeader("Accept", "application/json").
		Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("question bank returned status %d", resp.StatusCode())
	}

	var questions []ImportedQuestion
	if err := json.Unmarshal(resp.Body(), &questions); err != nil {
		return nil, fmt.Errorf("invalid question bank payload: %w", err)
	}

	return questions, nil
}
