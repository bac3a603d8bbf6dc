package api

import (
	"net/http"

	"applyflow/internal/db"
	"applyflow/internal/review"

	"github.com/gin-gonic/gin"
)

type AssignReviewsRequest struct {
	EventID           uint   `json:"event_id"`
	ReviewerUserEmail string `json:"reviewer_user_email"`
	NumReviews        int    `json:"num_reviews"`
}

// POST /reviewassignment  [event admin]
// Bulk allocation: assigns up to num_reviews responses to the reviewer,
// fewest-reviewed responses first.
func AssignReviewsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignReviewsRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.EventID == 0 || req.ReviewerUserEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.NumReviews <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "num_reviews must be positive"}})
			return
		}
		if !requireEventAdmin(c, req.EventID) {
			return
		}
		assigned, err := review.Assign(db.DB, req.EventID, req.ReviewerUserEmail, req.NumReviews)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"reviews_assigned": assigned})
	}
}

// GET /reviewassignment/summary?event_id  [event admin]
func AssignmentSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := queryUint(c, "event_id")
		if !ok {
			return
		}
		if !requireEventAdmin(c, eventID) {
			return
		}
		unallocated, err := review.Summary(db.DB, eventID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews_unallocated": unallocated})
	}
}

type AssignResponseReviewerRequest struct {
	EventID       uint   `json:"event_id"`
	ResponseIDs   []uint `json:"response_ids"`
	ReviewerEmail string `json:"reviewer_email"`
}

// POST /assignresponsereviewer  [event admin]
func AssignResponseReviewerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AssignResponseReviewerRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.EventID == 0 || len(req.ResponseIDs) == 0 || req.ReviewerEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if !requireEventAdmin(c, req.EventID) {
			return
		}
		assigned, err := review.AssignResponses(db.DB, req.EventID, req.ResponseIDs, req.ReviewerEmail)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"reviews_assigned": assigned})
	}
}

type DeleteResponseReviewerRequest struct {
	EventID        uint `json:"event_id"`
	ResponseID     uint `json:"response_id"`
	ReviewerUserID uint `json:"reviewer_user_id"`
}

// DELETE /assignresponsereviewer  [event admin]
// Hard-deletes an assignment, unless a submitted review backs it.
func DeleteResponseReviewerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeleteResponseReviewerRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.EventID == 0 || req.ResponseID == 0 || req.ReviewerUserID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if !requireEventAdmin(c, req.EventID) {
			return
		}
		if err := review.Unassign(db.DB, req.ResponseID, req.ReviewerUserID); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Assignment removed"})
	}
}
