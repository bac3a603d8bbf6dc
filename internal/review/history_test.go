package review

import (
	"testing"

	"applyflow/internal/apperr"
	"applyflow/internal/response"
)

// seedReviews assigns the reviewer to n fresh responses and submits a
// review for each, scoring the first weighted question.
func seedReviews(t *testing.T, dbConn *testDB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		resp := seedCandidateResponse(t, dbConn.db, dbConn.env, dbConn.candidate.ID, nil)
		if _, err := AssignResponses(dbConn.db, 1, []uint{resp.ID}, dbConn.reviewer.Email); err != nil {
			t.Fatalf("AssignResponses failed: %v", err)
		}
		q1 := dbConn.env.reviewForm.ReviewQuestions[0]
		if _, err := Save(dbConn.db, dbConn.env.reviewForm.ID, resp.ID, dbConn.reviewer.ID,
			[]ScoreInput{{ReviewQuestionID: q1.ID, Value: "2"}}, true, "en"); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
}

func TestHistory_Pagination(t *testing.T) {
	h := newHistoryFixture(t)
	seedReviews(t, h, 5)

	result, err := History(h.db, 1, h.reviewer.ID, 0, 2, "review_response_id")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if result.NumEntries != 5 {
		t.Errorf("expected 5 entries, got %d", result.NumEntries)
	}
	if result.TotalPages != 3 {
		t.Errorf("expected 3 pages for 5 entries at limit 2, got %d", result.TotalPages)
	}
	if len(result.Reviews) != 2 {
		t.Fatalf("expected 2 reviews on page 0, got %d", len(result.Reviews))
	}
	if result.Reviews[0].ReviewResponseID >= result.Reviews[1].ReviewResponseID {
		t.Error("reviews not ordered by review_response_id")
	}
	if result.Reviews[0].TotalScore != 4.0 {
		t.Errorf("expected total score 4.0 (2 x weight 2.0), got %v", result.Reviews[0].TotalScore)
	}
	if result.Reviews[0].ReviewedUserID == "" {
		t.Error("reviewed user id missing")
	}

	// The last page holds the remainder.
	result, err = History(h.db, 1, h.reviewer.ID, 2, 2, "review_response_id")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(result.Reviews) != 1 {
		t.Errorf("expected 1 review on the last page, got %d", len(result.Reviews))
	}
}

func TestHistory_IncludesDrafts(t *testing.T) {
	h := newHistoryFixture(t)
	resp := seedCandidateResponse(t, h.db, h.env, h.candidate.ID, nil)
	if _, err := AssignResponses(h.db, 1, []uint{resp.ID}, h.reviewer.Email); err != nil {
		t.Fatalf("AssignResponses failed: %v", err)
	}
	if _, err := Save(h.db, h.env.reviewForm.ID, resp.ID, h.reviewer.ID, nil, false, "en"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := History(h.db, 1, h.reviewer.ID, 0, 10, "review_response_id")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if result.NumEntries != 1 {
		t.Fatalf("expected the draft to be listed, got %d entries", result.NumEntries)
	}
	if result.Reviews[0].IsSubmitted {
		t.Error("draft flagged as submitted")
	}
	if result.Reviews[0].SubmittedTimestamp != nil {
		t.Error("draft carries a submitted timestamp")
	}
}

func TestHistory_EmptyIsZeroPages(t *testing.T) {
	h := newHistoryFixture(t)
	result, err := History(h.db, 1, h.reviewer.ID, 0, 10, "review_response_id")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if result.NumEntries != 0 || result.TotalPages != 0 {
		t.Errorf("expected 0 entries / 0 pages, got %d / %d", result.NumEntries, result.TotalPages)
	}
	if len(result.Reviews) != 0 {
		t.Errorf("expected no reviews, got %d", len(result.Reviews))
	}
}

func TestHistory_ParameterValidation(t *testing.T) {
	h := newHistoryFixture(t)
	if _, err := History(h.db, 1, h.reviewer.ID, 0, 10, "password_hash"); !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("expected BadRequest for an unknown sort column, got %v", err)
	}
	if _, err := History(h.db, 1, h.reviewer.ID, 0, 0, "review_response_id"); !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("expected BadRequest for limit 0, got %v", err)
	}
	if _, err := History(h.db, 1, h.reviewer.ID, -1, 10, "review_response_id"); !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("expected BadRequest for a negative page, got %v", err)
	}
}

func TestHistory_RequiresReviewerRole(t *testing.T) {
	h := newHistoryFixture(t)
	_, err := History(h.db, 1, h.candidate.ID, 0, 10, "review_response_id")
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("expected Forbidden for a non-reviewer, got %v", err)
	}
}

func TestHistory_SortBySubmittedTimestamp(t *testing.T) {
	h := newHistoryFixture(t)
	seedReviews(t, h, 3)

	result, err := History(h.db, 1, h.reviewer.ID, 0, 10, "submitted_timestamp")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(result.Reviews) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(result.Reviews))
	}
	// Withdrawn candidates stay in the reviewer's history.
	var resp response.Response
	if err := h.db.First(&resp, result.Reviews[0].ResponseID).Error; err != nil {
		t.Fatalf("failed to load reviewed response: %v", err)
	}
	if err := response.Withdraw(h.db, resp.ID, resp.UserID); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	again, err := History(h.db, 1, h.reviewer.ID, 0, 10, "submitted_timestamp")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if again.NumEntries != 3 {
		t.Errorf("withdrawal removed a review from history: %d", again.NumEntries)
	}
}
