package response

import (
	"sort"
	"time"

	"applyflow/internal/apperr"
	"applyflow/internal/appform"
	"applyflow/internal/i18n"
	"applyflow/internal/user"

	"gorm.io/gorm"
)

type AnswerInput struct {
	QuestionID uint   `json:"question_id"`
	Value      string `json:"value"`
}

type AnswerView struct {
	ID         uint   `json:"id"`
	QuestionID uint   `json:"question_id"`
	Headline   string `json:"headline"`
	Value      string `json:"value"`
}

type ResponseView struct {
	ID                 uint         `json:"id"`
	ApplicationFormID  uint         `json:"application_form_id"`
	UserID             uint         `json:"user_id"`
	IsSubmitted        bool         `json:"is_submitted"`
	SubmittedTimestamp *time.Time   `json:"submitted_timestamp"`
	IsWithdrawn        bool         `json:"is_withdrawn"`
	WithdrawnTimestamp *time.Time   `json:"withdrawn_timestamp"`
	StartedTimestamp   time.Time    `json:"started_timestamp"`
	Language           string       `json:"language"`
	Answers            []AnswerView `json:"answers"`
}

// questionIndex maps question id to its base entity and translations
// for answer annotation.
func questionIndex(form *appform.ApplicationForm) map[uint]appform.Question {
	index := map[uint]appform.Question{}
	for _, section := range form.Sections {
		for _, question := range section.Questions {
			index[question.ID] = question
		}
	}
	return index
}

func buildView(resp *Response, questions map[uint]appform.Question, language string) ResponseView {
	view := ResponseView{
		ID:                 resp.ID,
		ApplicationFormID:  resp.ApplicationFormID,
		UserID:             resp.UserID,
		IsSubmitted:        resp.IsSubmitted,
		SubmittedTimestamp: resp.SubmittedTimestamp,
		IsWithdrawn:        resp.IsWithdrawn,
		WithdrawnTimestamp: resp.WithdrawnTimestamp,
		StartedTimestamp:   resp.StartedTimestamp,
		Language:           resp.Language,
		Answers:            []AnswerView{},
	}
	answers := append([]Answer(nil), resp.Answers...)
	sort.Slice(answers, func(i, j int) bool { return answers[i].QuestionID < answers[j].QuestionID })
	for _, answer := range answers {
		av := AnswerView{ID: answer.ID, QuestionID: answer.QuestionID, Value: answer.Value}
		if question, ok := questions[answer.QuestionID]; ok {
			if qt, err := i18n.PickLogged(question.Translations, language, "question", question.ID); err == nil {
				av.Headline = qt.Headline
			}
		}
		view.Answers = append(view.Answers, av)
	}
	return view
}

// ForUser lists the user's responses on the event's form, ordered by
// id, each annotated with translated answers. No responses is an empty
// list, not an error.
func ForUser(db *gorm.DB, eventID, userID uint, language string) ([]ResponseView, error) {
	form, err := appform.GetByEventID(db, eventID)
	if err != nil {
		return nil, apperr.Unavailable("could not load form", err)
	}
	if form == nil {
		return nil, apperr.NotFound("no application form for this event")
	}
	var responses []Response
	if err := db.Preload("Answers").
		Where("application_form_id = ? AND user_id = ?", form.ID, userID).
		Order("id").
		Find(&responses).Error; err != nil {
		return nil, apperr.Unavailable("could not load responses", err)
	}
	questions := questionIndex(form)
	views := []ResponseView{}
	for i := range responses {
		views = append(views, buildView(&responses[i], questions, language))
	}
	return views, nil
}

// Create starts a new response, failing when the form is closed or
// when the form disallows nominations and the user already has one.
func Create(db *gorm.DB, formID, userID uint, answers []AnswerInput, submit bool, language string) (*Response, error) {
	form, err := appform.GetByID(db, formID)
	if err != nil {
		return nil, apperr.Unavailable("could not load form", err)
	}
	if form == nil {
		return nil, apperr.NotFound("application form not found")
	}
	if !form.IsOpen {
		return nil, apperr.Forbidden("applications are closed for this event")
	}
	if !form.Nominations {
		var count int64
		if err := db.Model(&Response{}).
			Where("application_form_id = ? AND user_id = ?", form.ID, userID).
			Count(&count).Error; err != nil {
			return nil, apperr.Unavailable("could not check existing responses", err)
		}
		if count > 0 {
			return nil, apperr.Conflict("a response already exists for this form")
		}
	}

	resp := Response{
		ApplicationFormID: form.ID,
		UserID:            userID,
		StartedTimestamp:  time.Now().UTC(),
		Language:          language,
	}
	if submit {
		resp.Submit()
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&resp).Error; err != nil {
			return err
		}
		for _, input := range answers {
			answer := Answer{ResponseID: resp.ID, QuestionID: input.QuestionID, Value: input.Value}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Unavailable("could not create response", err)
	}
	if err := db.Preload("Answers").First(&resp, resp.ID).Error; err != nil {
		return nil, apperr.Unavailable("could not reload response", err)
	}
	return &resp, nil
}

// Update upserts the response's answers (existing answers matched by
// question id), updates its language, and submits when requested.
// Submission is one-way; an update never un-submits.
func Update(db *gorm.DB, responseID, formID, userID uint, answers []AnswerInput, submit bool, language string) (*Response, error) {
	var resp Response
	if err := db.Preload("Answers").First(&resp, responseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("response not found")
		}
		return nil, apperr.Unavailable("could not load response", err)
	}
	if resp.UserID != userID {
		return nil, apperr.Forbidden("response belongs to another user")
	}
	if resp.ApplicationFormID != formID {
		return nil, apperr.Conflict("application form id does not match this response")
	}

	existing := map[uint]Answer{}
	for _, answer := range resp.Answers {
		existing[answer.QuestionID] = answer
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, input := range answers {
			if current, ok := existing[input.QuestionID]; ok {
				if err := tx.Model(&Answer{}).Where("id = ?", current.ID).
					Update("value", input.Value).Error; err != nil {
					return err
				}
			} else {
				answer := Answer{ResponseID: resp.ID, QuestionID: input.QuestionID, Value: input.Value}
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
			}
		}
		resp.Language = language
		if submit {
			resp.Submit()
		}
		return tx.Model(&Response{}).Where("id = ?", resp.ID).
			Updates(map[string]interface{}{
				"language":            resp.Language,
				"is_submitted":        resp.IsSubmitted,
				"submitted_timestamp": resp.SubmittedTimestamp,
			}).Error
	})
	if err != nil {
		return nil, apperr.Unavailable("could not update response", err)
	}
	if err := db.Preload("Answers").First(&resp, resp.ID).Error; err != nil {
		return nil, apperr.Unavailable("could not reload response", err)
	}
	return &resp, nil
}

// Withdraw soft-deletes a response. Withdrawing an already-withdrawn or
// nonexistent response is NotFound.
func Withdraw(db *gorm.DB, responseID, userID uint) error {
	var resp Response
	if err := db.First(&resp, responseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.NotFound("response not found")
		}
		return apperr.Unavailable("could not load response", err)
	}
	if resp.UserID != userID {
		return apperr.Forbidden("response belongs to another user")
	}
	if resp.IsWithdrawn {
		return apperr.NotFound("response already withdrawn")
	}
	resp.Withdraw()
	if err := db.Model(&Response{}).Where("id = ?", resp.ID).
		Updates(map[string]interface{}{
			"is_submitted":        false,
			"is_withdrawn":        true,
			"withdrawn_timestamp": resp.WithdrawnTimestamp,
		}).Error; err != nil {
		return apperr.Unavailable("could not withdraw response", err)
	}
	return nil
}

type CandidateResponse struct {
	ResponseView
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// ListForEvent is the admin cross-candidate listing. Withdrawn
// responses are excluded; unsubmitted ones only appear when requested.
// When questionIDs is non-empty only answers to those questions are
// returned.
func ListForEvent(db *gorm.DB, eventID uint, language string, includeUnsubmitted bool, questionIDs []uint) ([]CandidateResponse, error) {
	form, err := appform.GetByEventID(db, eventID)
	if err != nil {
		return nil, apperr.Unavailable("could not load form", err)
	}
	if form == nil {
		return nil, apperr.NotFound("no application form for this event")
	}
	query := db.Preload("Answers").
		Where("application_form_id = ? AND is_withdrawn = ?", form.ID, false)
	if !includeUnsubmitted {
		query = query.Where("is_submitted = ?", true)
	}
	var responses []Response
	if err := query.Order("id").Find(&responses).Error; err != nil {
		return nil, apperr.Unavailable("could not load responses", err)
	}

	wanted := map[uint]bool{}
	for _, id := range questionIDs {
		wanted[id] = true
	}
	questions := questionIndex(form)

	results := []CandidateResponse{}
	for i := range responses {
		resp := &responses[i]
		if len(wanted) > 0 {
			filtered := resp.Answers[:0]
			for _, answer := range resp.Answers {
				if wanted[answer.QuestionID] {
					filtered = append(filtered, answer)
				}
			}
			resp.Answers = filtered
		}
		entry := CandidateResponse{ResponseView: buildView(resp, questions, language)}
		var u user.AppUser
		if err := db.First(&u, resp.UserID).Error; err == nil {
			entry.Email = u.Email
			entry.Firstname = u.Firstname
			entry.Lastname = u.Lastname
		}
		results = append(results, entry)
	}
	return results, nil
}
