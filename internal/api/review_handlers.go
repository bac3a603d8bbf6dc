package api

import (
	"net/http"

	"applyflow/internal/db"
	"applyflow/internal/review"

	"github.com/gin-gonic/gin"
)

// GET /review?event_id&language&skip
// The next response in the reviewer's remaining queue.
func GetNextReviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := queryUint(c, "event_id")
		if !ok {
			return
		}
		skip, ok := queryIntDefault(c, "skip", 0)
		if !ok {
			return
		}
		result, err := review.Next(db.DB, eventID, currentUserID(c), skip, queryLanguage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /reviewresponse?id&language
func GetReviewResponseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := queryUint(c, "id")
		if !ok {
			return
		}
		rr, err := review.GetByID(db.DB, id)
		if err != nil {
			writeError(c, err)
			return
		}
		if rr.ReviewerUserID != currentUserID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Review belongs to another reviewer"}})
			return
		}
		form, err := review.FormByID(db.DB, rr.ReviewFormID)
		if err != nil {
			writeError(c, err)
			return
		}
		formView, err := review.BuildFormView(form, queryLanguage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"review_form":     formView,
			"review_response": rr,
		})
	}
}

type SaveReviewResponseRequest struct {
	ReviewFormID uint                `json:"review_form_id"`
	ResponseID   uint                `json:"response_id"`
	Scores       []review.ScoreInput `json:"scores"`
	IsSubmitted  bool                `json:"is_submitted"`
	Language     string              `json:"language"`
}

func saveReviewResponse(c *gin.Context, status int) {
	var req SaveReviewResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReviewFormID == 0 || req.ResponseID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}
	rr, err := review.Save(db.DB, req.ReviewFormID, req.ResponseID, currentUserID(c), req.Scores, req.IsSubmitted, req.Language)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, rr)
}

// POST /reviewresponse
func CreateReviewResponseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		saveReviewResponse(c, http.StatusCreated)
	}
}

// PUT /reviewresponse
func UpdateReviewResponseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		saveReviewResponse(c, http.StatusOK)
	}
}

// GET /reviewlist?event_id&language
// The reviewer's assigned responses with identifying answers and
// running scores.
func ReviewListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := queryUint(c, "event_id")
		if !ok {
			return
		}
		entries, err := review.List(db.DB, eventID, currentUserID(c), queryLanguage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
