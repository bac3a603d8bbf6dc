package review

import (
	"sort"

	"applyflow/internal/apperr"
	"applyflow/internal/appform"
	"applyflow/internal/event"
	"applyflow/internal/response"
	"applyflow/internal/user"

	"gorm.io/gorm"
)

// FormForEvent resolves the event's review form (via its application
// form) with questions, translations and configuration loaded. Both
// return values are nil-checked by callers; a missing form is NotFound.
func FormForEvent(db *gorm.DB, eventID uint) (*ReviewForm, *appform.ApplicationForm, error) {
	form, err := appform.GetByEventID(db, eventID)
	if err != nil {
		return nil, nil, apperr.Unavailable("could not load application form", err)
	}
	if form == nil {
		return nil, nil, apperr.NotFound("no application form for this event")
	}
	var reviewForm ReviewForm
	err = db.Preload("ReviewQuestions.Translations").
		Preload("Configuration").
		Where("application_form_id = ?", form.ID).
		First(&reviewForm).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil, apperr.NotFound("no review form for this event")
	}
	if err != nil {
		return nil, nil, apperr.Unavailable("could not load review form", err)
	}
	sort.Slice(reviewForm.ReviewQuestions, func(i, j int) bool {
		return reviewForm.ReviewQuestions[i].Order < reviewForm.ReviewQuestions[j].Order
	})
	return &reviewForm, form, nil
}

// FormByID loads a review form with questions, translations and
// configuration.
func FormByID(db *gorm.DB, id uint) (*ReviewForm, error) {
	var reviewForm ReviewForm
	err := db.Preload("ReviewQuestions.Translations").
		Preload("Configuration").
		First(&reviewForm, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperr.NotFound("review form not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("could not load review form", err)
	}
	sort.Slice(reviewForm.ReviewQuestions, func(i, j int) bool {
		return reviewForm.ReviewQuestions[i].Order < reviewForm.ReviewQuestions[j].Order
	})
	return &reviewForm, nil
}

// activeReviewerCounts returns response id → number of active
// assignments, for every response of the form.
func activeReviewerCounts(db *gorm.DB, formID uint) (map[uint]int, error) {
	type row struct {
		ResponseID uint
		N          int
	}
	var rows []row
	err := db.Model(&ResponseReviewer{}).
		Select("response_reviewers.response_id as response_id, count(*) as n").
		Joins("JOIN responses ON responses.id = response_reviewers.response_id").
		Where("responses.application_form_id = ? AND response_reviewers.active = ?", formID, true).
		Group("response_reviewers.response_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := map[uint]int{}
	for _, r := range rows {
		counts[r.ResponseID] = r.N
	}
	return counts, nil
}

// Assign allocates up to numReviews responses to the reviewer with the
// given email. The candidate pool excludes the reviewer's own
// responses, unsubmitted or withdrawn responses, responses already
// assigned to this reviewer in any state, and responses at their
// active-reviewer ceiling. Remaining candidates are taken fewest
// active reviewers first, response id breaking ties. A pool smaller
// than numReviews is not an error; the call assigns what it can and
// reports the count.
func Assign(db *gorm.DB, eventID uint, reviewerEmail string, numReviews int) (int, error) {
	var reviewer user.AppUser
	if err := db.Where("email = ?", reviewerEmail).First(&reviewer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, apperr.NotFound("no user exists with that email")
		}
		return 0, apperr.Unavailable("could not look up reviewer", err)
	}

	reviewForm, form, err := FormForEvent(db, eventID)
	if err != nil {
		return 0, err
	}
	ceiling := 0
	if reviewForm.Configuration != nil {
		ceiling = reviewForm.Configuration.Ceiling()
	}

	var candidates []response.Response
	err = db.Where("application_form_id = ? AND is_submitted = ? AND is_withdrawn = ? AND user_id != ?",
		form.ID, true, false, reviewer.ID).
		Where("id NOT IN (?)",
			db.Model(&ResponseReviewer{}).Select("response_id").
				Where("reviewer_user_id = ?", reviewer.ID)).
		Order("id").
		Find(&candidates).Error
	if err != nil {
		return 0, apperr.Unavailable("could not load candidate responses", err)
	}

	counts, err := activeReviewerCounts(db, form.ID)
	if err != nil {
		return 0, apperr.Unavailable("could not count active reviewers", err)
	}

	eligible := candidates[:0]
	for _, c := range candidates {
		if counts[c.ID] < ceiling {
			eligible = append(eligible, c)
		}
	}
	// Load balance: fewest active reviewers first, stable on id.
	sort.SliceStable(eligible, func(i, j int) bool {
		return counts[eligible[i].ID] < counts[eligible[j].ID]
	})
	if len(eligible) > numReviews {
		eligible = eligible[:numReviews]
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, c := range eligible {
			rr := ResponseReviewer{ResponseID: c.ID, ReviewerUserID: reviewer.ID, Active: true}
			if err := tx.Create(&rr).Error; err != nil {
				return err
			}
		}
		return event.GrantRole(tx, reviewer.ID, eventID, event.RoleReviewer)
	})
	if err != nil {
		return 0, apperr.Unavailable("could not save assignments", err)
	}
	return len(eligible), nil
}

// AssignResponses assigns the named reviewer to every listed response.
// Responses belonging to a different event make the whole call
// Forbidden; already-assigned pairs are skipped.
func AssignResponses(db *gorm.DB, eventID uint, responseIDs []uint, reviewerEmail string) (int, error) {
	var reviewer user.AppUser
	if err := db.Where("email = ?", reviewerEmail).First(&reviewer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, apperr.NotFound("no user exists with that email")
		}
		return 0, apperr.Unavailable("could not look up reviewer", err)
	}
	form, err := appform.GetByEventID(db, eventID)
	if err != nil {
		return 0, apperr.Unavailable("could not load form", err)
	}
	if form == nil {
		return 0, apperr.NotFound("no application form for this event")
	}

	var responses []response.Response
	if err := db.Where("id IN ?", responseIDs).Find(&responses).Error; err != nil {
		return 0, apperr.Unavailable("could not load responses", err)
	}
	if len(responses) != len(responseIDs) {
		return 0, apperr.NotFound("one or more responses not found")
	}
	for _, r := range responses {
		if r.ApplicationFormID != form.ID {
			return 0, apperr.Forbidden("response belongs to a different event")
		}
	}

	assigned := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, r := range responses {
			var count int64
			if err := tx.Model(&ResponseReviewer{}).
				Where("response_id = ? AND reviewer_user_id = ?", r.ID, reviewer.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			rr := ResponseReviewer{ResponseID: r.ID, ReviewerUserID: reviewer.ID, Active: true}
			if err := tx.Create(&rr).Error; err != nil {
				return err
			}
			assigned++
		}
		return event.GrantRole(tx, reviewer.ID, eventID, event.RoleReviewer)
	})
	if err != nil {
		return 0, apperr.Unavailable("could not save assignments", err)
	}
	return assigned, nil
}

// Unassign removes an assignment outright. Unlike withdrawn responses
// this is a hard delete, but only while no submitted review backs the
// pair.
func Unassign(db *gorm.DB, responseID, reviewerUserID uint) error {
	var rr ResponseReviewer
	err := db.Where("response_id = ? AND reviewer_user_id = ?", responseID, reviewerUserID).
		First(&rr).Error
	if err == gorm.ErrRecordNotFound {
		return apperr.NotFound("assignment not found")
	}
	if err != nil {
		return apperr.Unavailable("could not load assignment", err)
	}

	var completed int64
	if err := db.Model(&ReviewResponse{}).
		Where("response_id = ? AND reviewer_user_id = ? AND is_submitted = ?", responseID, reviewerUserID, true).
		Count(&completed).Error; err != nil {
		return apperr.Unavailable("could not check for completed reviews", err)
	}
	if completed > 0 {
		return apperr.BadRequest("cannot remove an assignment with a submitted review")
	}
	if err := db.Delete(&ResponseReviewer{}, rr.ID).Error; err != nil {
		return apperr.Unavailable("could not delete assignment", err)
	}
	return nil
}

// Deactivate marks an assignment inactive without deleting it, so the
// response leaves the reviewer's remaining queue and allocation counts
// while completed reviews stay intact.
func Deactivate(db *gorm.DB, responseID, reviewerUserID uint) error {
	res := db.Model(&ResponseReviewer{}).
		Where("response_id = ? AND reviewer_user_id = ?", responseID, reviewerUserID).
		Update("active", false)
	if res.Error != nil {
		return apperr.Unavailable("could not deactivate assignment", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("assignment not found")
	}
	return nil
}

type ReviewerSummary struct {
	ReviewerUserID  uint   `json:"reviewer_user_id"`
	Email           string `json:"email"`
	Active          bool   `json:"active"`
	ReviewSubmitted bool   `json:"review_submitted"`
}

// ReviewerSummaries maps response id → assignments (active first, then
// by reviewer id) for the admin cross-candidate listing.
func ReviewerSummaries(db *gorm.DB, responseIDs []uint) (map[uint][]ReviewerSummary, error) {
	result := map[uint][]ReviewerSummary{}
	if len(responseIDs) == 0 {
		return result, nil
	}
	var assignments []ResponseReviewer
	if err := db.Where("response_id IN ?", responseIDs).
		Order("active DESC, reviewer_user_id").
		Find(&assignments).Error; err != nil {
		return nil, apperr.Unavailable("could not load assignments", err)
	}
	for _, rr := range assignments {
		summary := ReviewerSummary{ReviewerUserID: rr.ReviewerUserID, Active: rr.Active}
		var u user.AppUser
		if err := db.First(&u, rr.ReviewerUserID).Error; err == nil {
			summary.Email = u.Email
		}
		var submitted int64
		if err := db.Model(&ReviewResponse{}).
			Where("response_id = ? AND reviewer_user_id = ? AND is_submitted = ?",
				rr.ResponseID, rr.ReviewerUserID, true).
			Count(&submitted).Error; err != nil {
			return nil, apperr.Unavailable("could not count submitted reviews", err)
		}
		summary.ReviewSubmitted = submitted > 0
		result[rr.ResponseID] = append(result[rr.ResponseID], summary)
	}
	return result, nil
}

// Summary computes the allocation backlog for an event:
// reviews_unallocated = Σ max(0, required − active reviewers) over
// reviewable responses.
func Summary(db *gorm.DB, eventID uint) (int, error) {
	reviewForm, form, err := FormForEvent(db, eventID)
	if err != nil {
		return 0, err
	}
	required := 0
	if reviewForm.Configuration != nil {
		required = reviewForm.Configuration.NumReviewsRequired
	}

	var reviewable []response.Response
	if err := db.Where("application_form_id = ? AND is_submitted = ? AND is_withdrawn = ?",
		form.ID, true, false).
		Find(&reviewable).Error; err != nil {
		return 0, apperr.Unavailable("could not load responses", err)
	}
	counts, err := activeReviewerCounts(db, form.ID)
	if err != nil {
		return 0, apperr.Unavailable("could not count active reviewers", err)
	}

	unallocated := 0
	for _, r := range reviewable {
		if missing := required - counts[r.ID]; missing > 0 {
			unallocated += missing
		}
	}
	return unallocated, nil
}
