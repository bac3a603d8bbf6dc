package review

import (
	"time"

	"gorm.io/datatypes"
)

// ReviewForm is the scoring questionnaire attached to an application
// form (one each way).
type ReviewForm struct {
	ID                uint                 `gorm:"primaryKey" json:"id"`
	ApplicationFormID uint                 `gorm:"uniqueIndex;not null" json:"application_form_id"`
	Deadline          time.Time            `json:"deadline"`
	Active            bool                 `gorm:"not null;default:true" json:"active"`
	ReviewQuestions   []ReviewQuestion     `gorm:"foreignKey:ReviewFormID" json:"-"`
	Configuration     *ReviewConfiguration `gorm:"foreignKey:ReviewFormID" json:"-"`
}

// Close stops the form from accepting new reviews.
func (f *ReviewForm) Close() { f.Active = false }

// ReviewConfiguration sets how many reviews each response should
// receive. Required + optional is the active-reviewer ceiling per
// response.
type ReviewConfiguration struct {
	ID                 uint `gorm:"primaryKey" json:"id"`
	ReviewFormID       uint `gorm:"uniqueIndex;not null" json:"review_form_id"`
	NumReviewsRequired int  `gorm:"not null" json:"num_reviews_required"`
	NumOptionalReviews int  `gorm:"not null;default:0" json:"num_optional_reviews"`
}

func (c *ReviewConfiguration) Ceiling() int {
	return c.NumReviewsRequired + c.NumOptionalReviews
}

type ReviewQuestion struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	ReviewFormID uint                        `gorm:"not null;index" json:"review_form_id"`
	QuestionID   *uint                       `json:"question_id"`
	Type         string                      `gorm:"size:32;not null" json:"type"`
	IsRequired   bool                        `gorm:"not null;default:true" json:"is_required"`
	Order        int                         `gorm:"column:sort_order;not null" json:"order"`
	Weight       float64                     `gorm:"not null;default:0" json:"weight"`
	Translations []ReviewQuestionTranslation `gorm:"foreignKey:ReviewQuestionID" json:"-"`
}

type ReviewQuestionTranslation struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ReviewQuestionID uint           `gorm:"not null;uniqueIndex:idx_review_question_lang" json:"review_question_id"`
	Language         string         `gorm:"size:8;not null;uniqueIndex:idx_review_question_lang" json:"language"`
	Headline         string         `gorm:"size:255" json:"headline"`
	Description      string         `json:"description"`
	Placeholder      string         `gorm:"size:255" json:"placeholder"`
	Options          datatypes.JSON `json:"options"`
	ValidationRegex  string         `gorm:"size:255" json:"validation_regex"`
	ValidationText   string         `gorm:"size:255" json:"validation_text"`
}

func (t ReviewQuestionTranslation) TranslationLanguage() string { return t.Language }

// ResponseReviewer assigns a reviewer to a response. The pair is
// unique, so re-assignment is a rejected duplicate insert rather than a
// second row. Deactivation keeps the row: it backs completed reviews
// while removing the response from the reviewer's remaining queue and
// from allocation counts.
type ResponseReviewer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ResponseID     uint      `gorm:"not null;uniqueIndex:idx_response_reviewer" json:"response_id"`
	ReviewerUserID uint      `gorm:"not null;uniqueIndex:idx_response_reviewer" json:"reviewer_user_id"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (rr *ResponseReviewer) Deactivate() { rr.Active = false }

// ReviewResponse is one reviewer's evaluation of one candidate
// response. Once created it always counts as review work, regardless of
// later assignment deactivation.
type ReviewResponse struct {
	ID                 uint          `gorm:"primaryKey" json:"id"`
	ReviewFormID       uint          `gorm:"not null;uniqueIndex:idx_review_response" json:"review_form_id"`
	ReviewerUserID     uint          `gorm:"not null;uniqueIndex:idx_review_response" json:"reviewer_user_id"`
	ResponseID         uint          `gorm:"not null;uniqueIndex:idx_review_response" json:"response_id"`
	Language           string        `gorm:"size:8;not null;default:'en'" json:"language"`
	IsSubmitted        bool          `gorm:"not null;default:false" json:"is_submitted"`
	SubmittedTimestamp *time.Time    `json:"submitted_timestamp"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
	Scores             []ReviewScore `gorm:"foreignKey:ReviewResponseID" json:"scores"`
}

func (r *ReviewResponse) Submit() {
	if r.IsSubmitted {
		return
	}
	now := time.Now().UTC()
	r.IsSubmitted = true
	r.SubmittedTimestamp = &now
}

type ReviewScore struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ReviewResponseID uint      `gorm:"not null;uniqueIndex:idx_score_response_question" json:"review_response_id"`
	ReviewQuestionID uint      `gorm:"not null;uniqueIndex:idx_score_response_question" json:"review_question_id"`
	Value            string    `json:"value"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
