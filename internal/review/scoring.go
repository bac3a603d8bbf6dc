package review

import (
	"strconv"

	"applyflow/internal/apperr"

	"gorm.io/gorm"
)

type ScoreInput struct {
	ReviewQuestionID uint   `json:"review_question_id"`
	Value            string `json:"value"`
}

// GetOrInit returns the reviewer's existing evaluation of the response,
// or an unsaved draft (zero id, no scores) when none exists yet.
func GetOrInit(db *gorm.DB, reviewFormID, reviewerUserID, responseID uint) (*ReviewResponse, error) {
	var rr ReviewResponse
	err := db.Preload("Scores").
		Where("review_form_id = ? AND reviewer_user_id = ? AND response_id = ?",
			reviewFormID, reviewerUserID, responseID).
		First(&rr).Error
	if err == gorm.ErrRecordNotFound {
		return &ReviewResponse{
			ReviewFormID:   reviewFormID,
			ReviewerUserID: reviewerUserID,
			ResponseID:     responseID,
			Scores:         []ReviewScore{},
		}, nil
	}
	if err != nil {
		return nil, apperr.Unavailable("could not load review response", err)
	}
	return &rr, nil
}

// GetByID loads a saved review response with its scores.
func GetByID(db *gorm.DB, id uint) (*ReviewResponse, error) {
	var rr ReviewResponse
	err := db.Preload("Scores").First(&rr, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("review response not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("could not load review response", err)
	}
	return &rr, nil
}

// Save upserts the reviewer's scores for a response. The assignment row
// is the authorization source: any ResponseReviewer linking the pair,
// active or deactivated, allows saving. Deactivation blocks new
// assignment, not completion of already-assigned work.
func Save(db *gorm.DB, reviewFormID, responseID, reviewerUserID uint, scores []ScoreInput, isSubmitted bool, language string) (*ReviewResponse, error) {
	var assignment int64
	if err := db.Model(&ResponseReviewer{}).
		Where("response_id = ? AND reviewer_user_id = ?", responseID, reviewerUserID).
		Count(&assignment).Error; err != nil {
		return nil, apperr.Unavailable("could not check assignment", err)
	}
	if assignment == 0 {
		return nil, apperr.Forbidden("reviewer is not assigned to this response")
	}

	var form ReviewForm
	if err := db.First(&form, reviewFormID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("review form not found")
		}
		return nil, apperr.Unavailable("could not load review form", err)
	}

	var rr ReviewResponse
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("review_form_id = ? AND reviewer_user_id = ? AND response_id = ?",
			reviewFormID, reviewerUserID, responseID).
			First(&rr).Error
		if err == gorm.ErrRecordNotFound {
			rr = ReviewResponse{
				ReviewFormID:   reviewFormID,
				ReviewerUserID: reviewerUserID,
				ResponseID:     responseID,
				Language:       language,
			}
			if err := tx.Create(&rr).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, input := range scores {
			var existing ReviewScore
			err := tx.Where("review_response_id = ? AND review_question_id = ?",
				rr.ID, input.ReviewQuestionID).
				First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				score := ReviewScore{
					ReviewResponseID: rr.ID,
					ReviewQuestionID: input.ReviewQuestionID,
					Value:            input.Value,
				}
				if err := tx.Create(&score).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			} else {
				if err := tx.Model(&ReviewScore{}).Where("id = ?", existing.ID).
					Update("value", input.Value).Error; err != nil {
					return err
				}
			}
		}

		rr.Language = language
		if isSubmitted {
			rr.Submit()
		}
		return tx.Model(&ReviewResponse{}).Where("id = ?", rr.ID).
			Updates(map[string]interface{}{
				"language":            rr.Language,
				"is_submitted":        rr.IsSubmitted,
				"submitted_timestamp": rr.SubmittedTimestamp,
			}).Error
	})
	if err != nil {
		return nil, apperr.Unavailable("could not save review response", err)
	}
	if err := db.Preload("Scores").First(&rr, rr.ID).Error; err != nil {
		return nil, apperr.Unavailable("could not reload review response", err)
	}
	return &rr, nil
}

// TotalScore is the weighted sum over a review's scores: numeric values
// times their question's weight, for questions with positive weight.
// Non-numeric and zero-weight scores contribute nothing; a review with
// no scores totals 0.0.
func TotalScore(db *gorm.DB, reviewResponseID uint) (float64, error) {
	var scores []ReviewScore
	if err := db.Where("review_response_id = ?", reviewResponseID).
		Find(&scores).Error; err != nil {
		return 0, apperr.Unavailable("could not load scores", err)
	}
	if len(scores) == 0 {
		return 0.0, nil
	}

	questionIDs := make([]uint, 0, len(scores))
	for _, s := range scores {
		questionIDs = append(questionIDs, s.ReviewQuestionID)
	}
	var questions []ReviewQuestion
	if err := db.Where("id IN ?", questionIDs).Find(&questions).Error; err != nil {
		return 0, apperr.Unavailable("could not load review questions", err)
	}
	weights := map[uint]float64{}
	for _, q := range questions {
		weights[q.ID] = q.Weight
	}

	total := 0.0
	for _, s := range scores {
		weight := weights[s.ReviewQuestionID]
		if weight <= 0 {
			continue
		}
		value, err := strconv.ParseFloat(s.Value, 64)
		if err != nil {
			continue
		}
		total += value * weight
	}
	return total, nil
}
