package review

import (
	"strconv"
	"time"

	"applyflow/internal/apperr"
	"applyflow/internal/event"
	"applyflow/internal/response"

	"gorm.io/gorm"
)

// Whitelisted sort columns for the review history listing.
var historySortColumns = map[string]string{
	"review_response_id":  "review_responses.id",
	"submitted_timestamp": "review_responses.submitted_timestamp",
}

type HistoryEntry struct {
	ReviewResponseID   uint       `json:"review_response_id"`
	ResponseID         uint       `json:"response_id"`
	ReviewedUserID     string     `json:"reviewed_user_id"`
	IsSubmitted        bool       `json:"is_submitted"`
	SubmittedTimestamp *time.Time `json:"submitted_timestamp"`
	TotalScore         float64    `json:"total_score"`
}

type HistoryResult struct {
	Reviews    []HistoryEntry `json:"reviews"`
	NumEntries int            `json:"num_entries"`
	TotalPages int            `json:"total_pages"`
}

// History pages through every review (drafts included) the reviewer
// has recorded against the event's review form. pageNumber is 0-based;
// totalPages = ceil(numEntries/limit), 0 when the reviewer has no
// reviews. Unknown sort columns are a BadRequest, callers without the
// reviewer role are Forbidden.
func History(db *gorm.DB, eventID, reviewerUserID uint, pageNumber, limit int, sortColumn string) (*HistoryResult, error) {
	isReviewer, err := event.HasRole(db, reviewerUserID, eventID, event.RoleReviewer)
	if err != nil {
		return nil, apperr.Unavailable("could not check reviewer role", err)
	}
	if !isReviewer {
		return nil, apperr.Forbidden("caller is not a reviewer on this event")
	}
	orderExpr, ok := historySortColumns[sortColumn]
	if !ok {
		return nil, apperr.BadRequest("unsupported sort column")
	}
	if limit < 1 {
		return nil, apperr.BadRequest("limit must be positive")
	}
	if pageNumber < 0 {
		return nil, apperr.BadRequest("page_number must not be negative")
	}

	reviewForm, _, err := FormForEvent(db, eventID)
	if err != nil {
		return nil, err
	}

	base := db.Model(&ReviewResponse{}).
		Where("review_form_id = ? AND reviewer_user_id = ?", reviewForm.ID, reviewerUserID)

	var numEntries int64
	if err := base.Count(&numEntries).Error; err != nil {
		return nil, apperr.Unavailable("could not count reviews", err)
	}

	var rows []ReviewResponse
	if err := db.Model(&ReviewResponse{}).
		Where("review_form_id = ? AND reviewer_user_id = ?", reviewForm.ID, reviewerUserID).
		Order(orderExpr).
		Offset(pageNumber * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, apperr.Unavailable("could not load reviews", err)
	}

	result := &HistoryResult{
		Reviews:    []HistoryEntry{},
		NumEntries: int(numEntries),
		TotalPages: int((numEntries + int64(limit) - 1) / int64(limit)),
	}
	for _, rr := range rows {
		entry := HistoryEntry{
			ReviewResponseID:   rr.ID,
			ResponseID:         rr.ResponseID,
			IsSubmitted:        rr.IsSubmitted,
			SubmittedTimestamp: rr.SubmittedTimestamp,
		}
		var resp response.Response
		if err := db.First(&resp, rr.ResponseID).Error; err == nil {
			entry.ReviewedUserID = strconv.FormatUint(uint64(resp.UserID), 10)
		}
		score, err := TotalScore(db, rr.ID)
		if err != nil {
			return nil, err
		}
		entry.TotalScore = score
		result.Reviews = append(result.Reviews, entry)
	}
	return result, nil
}
