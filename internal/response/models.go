package response

import (
	"time"
)

// Response is one candidate's submission against an application form.
// Withdrawal is a soft delete: the row and its answers survive so that
// completed reviews keep their subject.
type Response struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	ApplicationFormID  uint       `gorm:"not null;index:idx_response_form_user" json:"application_form_id"`
	UserID             uint       `gorm:"not null;index:idx_response_form_user" json:"user_id"`
	IsSubmitted        bool       `gorm:"not null;default:false" json:"is_submitted"`
	SubmittedTimestamp *time.Time `json:"submitted_timestamp"`
	IsWithdrawn        bool       `gorm:"not null;default:false" json:"is_withdrawn"`
	WithdrawnTimestamp *time.Time `json:"withdrawn_timestamp"`
	StartedTimestamp   time.Time  `json:"started_timestamp"`
	Language           string     `gorm:"size:8;not null;default:'en'" json:"language"`
	Answers            []Answer   `gorm:"foreignKey:ResponseID" json:"answers"`
}

type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ResponseID uint      `gorm:"not null;uniqueIndex:idx_answer_response_question" json:"response_id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_answer_response_question" json:"question_id"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Submit marks the response as submitted. Submitting twice keeps the
// original timestamp.
func (r *Response) Submit() {
	if r.IsSubmitted {
		return
	}
	now := time.Now().UTC()
	r.IsSubmitted = true
	r.SubmittedTimestamp = &now
}

// Withdraw soft-deletes the response. A withdrawn response is never
// re-activated through this API.
func (r *Response) Withdraw() {
	now := time.Now().UTC()
	r.IsSubmitted = false
	r.IsWithdrawn = true
	r.WithdrawnTimestamp = &now
}

// Reviewable reports whether the response can be put in front of a
// reviewer.
func (r *Response) Reviewable() bool {
	return r.IsSubmitted && !r.IsWithdrawn
}
