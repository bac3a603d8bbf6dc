package api

import (
	"net/http"

	"applyflow/internal/db"
	"applyflow/internal/response"
	"applyflow/internal/review"

	"github.com/gin-gonic/gin"
)

// GET /response?event_id&language
func GetResponseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := queryUint(c, "event_id")
		if !ok {
			return
		}
		views, err := response.ForUser(db.DB, eventID, currentUserID(c), queryLanguage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, views)
	}
}

type SaveResponseRequest struct {
	ID                uint                   `json:"id,omitempty"`
	ApplicationFormID uint                   `json:"application_form_id"`
	IsSubmitted       bool                   `json:"is_submitted"`
	Language          string                 `json:"language"`
	Answers           []response.AnswerInput `json:"answers"`
}

// POST /response
func CreateResponseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SaveResponseRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ApplicationFormID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.Language == "" {
			req.Language = "en"
		}
		resp, err := response.Create(db.DB, req.ApplicationFormID, currentUserID(c), req.Answers, req.IsSubmitted, req.Language)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// PUT /response
func UpdateResponseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SaveResponseRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 || req.ApplicationFormID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.Language == "" {
			req.Language = "en"
		}
		resp, err := response.Update(db.DB, req.ID, req.ApplicationFormID, currentUserID(c), req.Answers, req.IsSubmitted, req.Language)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// DELETE /response?id
// Withdrawal, not removal: the response stays behind its reviews.
func DeleteResponseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := queryUint(c, "id")
		if !ok {
			return
		}
		if err := response.Withdraw(db.DB, id, currentUserID(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type ListResponsesRequest struct {
	EventID            uint   `json:"event_id"`
	Language           string `json:"language"`
	IncludeUnsubmitted bool   `json:"include_unsubmitted"`
	QuestionIDs        []uint `json:"question_ids"`
}

// GET /responses  [event admin]
// Cross-candidate listing with reviewer-assignment summaries.
func ListResponsesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListResponsesRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.EventID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.Language == "" {
			req.Language = "en"
		}
		if !requireEventAdmin(c, req.EventID) {
			return
		}
		candidates, err := response.ListForEvent(db.DB, req.EventID, req.Language, req.IncludeUnsubmitted, req.QuestionIDs)
		if err != nil {
			writeError(c, err)
			return
		}

		responseIDs := make([]uint, 0, len(candidates))
		for _, candidate := range candidates {
			responseIDs = append(responseIDs, candidate.ID)
		}
		summaries, err := review.ReviewerSummaries(db.DB, responseIDs)
		if err != nil {
			writeError(c, err)
			return
		}

		type entry struct {
			response.CandidateResponse
			Reviewers []review.ReviewerSummary `json:"reviewers"`
		}
		result := []entry{}
		for _, candidate := range candidates {
			reviewers := summaries[candidate.ID]
			if reviewers == nil {
				reviewers = []review.ReviewerSummary{}
			}
			result = append(result, entry{CandidateResponse: candidate, Reviewers: reviewers})
		}
		c.JSON(http.StatusOK, result)
	}
}
