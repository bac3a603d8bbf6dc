package review

import (
	"encoding/json"
	"sort"

	"applyflow/internal/apperr"
	"applyflow/internal/appform"
	"applyflow/internal/i18n"
	"applyflow/internal/response"

	"gorm.io/gorm"
)

type ReviewQuestionView struct {
	ID              uint            `json:"id"`
	QuestionID      *uint           `json:"question_id"`
	Type            string          `json:"type"`
	IsRequired      bool            `json:"is_required"`
	Order           int             `json:"order"`
	Weight          float64         `json:"weight"`
	Headline        string          `json:"headline"`
	Description     string          `json:"description"`
	Placeholder     string          `json:"placeholder"`
	Options         json.RawMessage `json:"options"`
	ValidationRegex string          `json:"validation_regex"`
	ValidationText  string          `json:"validation_text"`
}

type ReviewFormView struct {
	ID                uint                 `json:"id"`
	ApplicationFormID uint                 `json:"application_form_id"`
	Deadline          string               `json:"deadline"`
	Active            bool                 `json:"active"`
	ReviewQuestions   []ReviewQuestionView `json:"review_questions"`
}

func BuildFormView(form *ReviewForm, language string) (*ReviewFormView, error) {
	view := &ReviewFormView{
		ID:                form.ID,
		ApplicationFormID: form.ApplicationFormID,
		Deadline:          form.Deadline.Format("2006-01-02T15:04:05"),
		Active:            form.Active,
		ReviewQuestions:   []ReviewQuestionView{},
	}
	for _, question := range form.ReviewQuestions {
		qt, err := i18n.PickLogged(question.Translations, language, "review question", question.ID)
		if err != nil {
			return nil, apperr.Unavailable("review question has no translations", err)
		}
		view.ReviewQuestions = append(view.ReviewQuestions, ReviewQuestionView{
			ID:              question.ID,
			QuestionID:      question.QuestionID,
			Type:            question.Type,
			IsRequired:      question.IsRequired,
			Order:           question.Order,
			Weight:          question.Weight,
			Headline:        qt.Headline,
			Description:     qt.Description,
			Placeholder:     qt.Placeholder,
			Options:         json.RawMessage(qt.Options),
			ValidationRegex: qt.ValidationRegex,
			ValidationText:  qt.ValidationText,
		})
	}
	return view, nil
}

type AnswerPreview struct {
	QuestionID uint   `json:"question_id"`
	Headline   string `json:"headline"`
	Value      string `json:"value"`
}

// ReviewableResponse is the candidate response as shown to a reviewer.
// Multi-choice answer values are rendered as their option labels.
type ReviewableResponse struct {
	ID       uint            `json:"id"`
	UserID   uint            `json:"user_id"`
	Language string          `json:"language"`
	Answers  []AnswerPreview `json:"answers"`
}

func buildReviewableResponse(resp *response.Response, form *appform.ApplicationForm, language string) ReviewableResponse {
	questions := map[uint]appform.Question{}
	for _, section := range form.Sections {
		for _, question := range section.Questions {
			questions[question.ID] = question
		}
	}
	view := ReviewableResponse{
		ID:       resp.ID,
		UserID:   resp.UserID,
		Language: resp.Language,
		Answers:  []AnswerPreview{},
	}
	answers := append([]response.Answer(nil), resp.Answers...)
	sort.Slice(answers, func(i, j int) bool { return answers[i].QuestionID < answers[j].QuestionID })
	for _, answer := range answers {
		preview := AnswerPreview{QuestionID: answer.QuestionID, Value: answer.Value}
		if question, ok := questions[answer.QuestionID]; ok {
			if qt, err := i18n.PickLogged(question.Translations, language, "question", question.ID); err == nil {
				preview.Headline = qt.Headline
				preview.Value = qt.OptionLabel(answer.Value)
			}
		}
		view.Answers = append(view.Answers, preview)
	}
	return view
}

type NextResult struct {
	Response              ReviewableResponse `json:"response"`
	ReviewForm            *ReviewFormView    `json:"review_form"`
	ReviewsRemainingCount int                `json:"reviews_remaining_count"`
}

// remainingQueue lists the reviewer's active assignments on reviewable
// responses without a submitted review, ordered by response id.
func remainingQueue(db *gorm.DB, formID, reviewFormID, reviewerUserID uint) ([]response.Response, error) {
	var responses []response.Response
	err := db.Preload("Answers").
		Joins("JOIN response_reviewers ON response_reviewers.response_id = responses.id").
		Where("response_reviewers.reviewer_user_id = ? AND response_reviewers.active = ?", reviewerUserID, true).
		Where("responses.application_form_id = ? AND responses.is_submitted = ? AND responses.is_withdrawn = ?",
			formID, true, false).
		Where("responses.id NOT IN (?)",
			db.Model(&ReviewResponse{}).Select("response_id").
				Where("review_form_id = ? AND reviewer_user_id = ? AND is_submitted = ?",
					reviewFormID, reviewerUserID, true)).
		Order("responses.id").
		Find(&responses).Error
	return responses, err
}

// Next returns the entry at position skip of the reviewer's remaining
// queue. Skip past the end clamps to the last entry; an empty queue
// yields the zero-id sentinel with a remaining count of 0.
func Next(db *gorm.DB, eventID, reviewerUserID uint, skip int, language string) (*NextResult, error) {
	reviewForm, form, err := FormForEvent(db, eventID)
	if err != nil {
		return nil, err
	}
	formView, err := BuildFormView(reviewForm, language)
	if err != nil {
		return nil, err
	}

	queue, err := remainingQueue(db, form.ID, reviewForm.ID, reviewerUserID)
	if err != nil {
		return nil, apperr.Unavailable("could not load review queue", err)
	}
	if len(queue) == 0 {
		return &NextResult{
			Response:              ReviewableResponse{ID: 0, Answers: []AnswerPreview{}},
			ReviewForm:            formView,
			ReviewsRemainingCount: 0,
		}, nil
	}
	if skip < 0 {
		skip = 0
	}
	if skip >= len(queue) {
		skip = len(queue) - 1
	}
	return &NextResult{
		Response:              buildReviewableResponse(&queue[skip], form, language),
		ReviewForm:            formView,
		ReviewsRemainingCount: len(queue),
	}, nil
}
