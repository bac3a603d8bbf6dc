package api

import (
	"net/http"

	"applyflow/internal/db"
	"applyflow/internal/review"

	"github.com/gin-gonic/gin"
)

// GET /reviewhistory?event_id&page_number&limit&sort_column
// Paged listing of the caller's own reviews, drafts included.
func ReviewHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := queryUint(c, "event_id")
		if !ok {
			return
		}
		pageNumber, ok := queryIntDefault(c, "page_number", 0)
		if !ok {
			return
		}
		limit, ok := queryIntDefault(c, "limit", 10)
		if !ok {
			return
		}
		sortColumn := c.Query("sort_column")
		if sortColumn == "" {
			sortColumn = "review_response_id"
		}
		result, err := review.History(db.DB, eventID, currentUserID(c), pageNumber, limit, sortColumn)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
