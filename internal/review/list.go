package review

import (
	"sort"

	"applyflow/internal/apperr"
	"applyflow/internal/appform"
	"applyflow/internal/i18n"
	"applyflow/internal/response"

	"gorm.io/gorm"
)

// Questions carrying this key are surfaced as identifying information
// in the reviewer's list view.
const reviewIdentifierKey = "review-identifier"

type ListEntry struct {
	ResponseID  uint            `json:"response_id"`
	Language    string          `json:"language"`
	Information []AnswerPreview `json:"information"`
	Started     bool            `json:"started"`
	Submitted   *string         `json:"submitted"`
	TotalScore  float64         `json:"total_score"`
}

// List enumerates the reviewer's active assignments on reviewable
// responses (completed reviews included), each enriched with the
// response's identifying answers, review progress and running total
// score. Ordered by response id.
func List(db *gorm.DB, eventID, reviewerUserID uint, language string) ([]ListEntry, error) {
	reviewForm, form, err := FormForEvent(db, eventID)
	if err != nil {
		return nil, err
	}

	identifiers := map[uint]appform.Question{}
	for _, section := range form.Sections {
		for _, question := range section.Questions {
			if question.Key == reviewIdentifierKey {
				identifiers[question.ID] = question
			}
		}
	}

	var responses []response.Response
	err = db.Preload("Answers").
		Joins("JOIN response_reviewers ON response_reviewers.response_id = responses.id").
		Where("response_reviewers.reviewer_user_id = ? AND response_reviewers.active = ?", reviewerUserID, true).
		Where("responses.application_form_id = ? AND responses.is_submitted = ? AND responses.is_withdrawn = ?",
			form.ID, true, false).
		Order("responses.id").
		Find(&responses).Error
	if err != nil {
		return nil, apperr.Unavailable("could not load assigned responses", err)
	}

	entries := []ListEntry{}
	for i := range responses {
		resp := &responses[i]
		entry := ListEntry{
			ResponseID:  resp.ID,
			Language:    resp.Language,
			Information: []AnswerPreview{},
		}
		answers := append([]response.Answer(nil), resp.Answers...)
		sort.Slice(answers, func(a, b int) bool { return answers[a].QuestionID < answers[b].QuestionID })
		for _, answer := range answers {
			question, ok := identifiers[answer.QuestionID]
			if !ok {
				continue
			}
			preview := AnswerPreview{QuestionID: answer.QuestionID, Value: answer.Value}
			if qt, err := i18n.PickLogged(question.Translations, language, "question", question.ID); err == nil {
				preview.Headline = qt.Headline
			}
			entry.Information = append(entry.Information, preview)
		}

		var rr ReviewResponse
		err := db.Where("review_form_id = ? AND reviewer_user_id = ? AND response_id = ?",
			reviewForm.ID, reviewerUserID, resp.ID).
			First(&rr).Error
		switch err {
		case nil:
			entry.Started = true
			if rr.SubmittedTimestamp != nil {
				ts := rr.SubmittedTimestamp.Format("2006-01-02T15:04:05")
				entry.Submitted = &ts
			}
			score, err := TotalScore(db, rr.ID)
			if err != nil {
				return nil, err
			}
			entry.TotalScore = score
		case gorm.ErrRecordNotFound:
			// not started, zero score
		default:
			return nil, apperr.Unavailable("could not load review response", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
