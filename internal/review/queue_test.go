package review

import (
	"testing"

	"applyflow/internal/apperr"
	"applyflow/internal/response"
)

func TestNext_EmptyQueueReturnsSentinel(t *testing.T) {
	dbConn := setupReviewDB(t)
	seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")

	result, err := Next(dbConn, 1, reviewer.ID, 0, "en")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if result.Response.ID != 0 {
		t.Errorf("expected the zero-id sentinel, got %d", result.Response.ID)
	}
	if result.ReviewsRemainingCount != 0 {
		t.Errorf("expected 0 remaining, got %d", result.ReviewsRemainingCount)
	}
	if result.ReviewForm == nil || len(result.ReviewForm.ReviewQuestions) != 3 {
		t.Errorf("review form missing from the sentinel result: %+v", result.ReviewForm)
	}
}

func TestNext_QueueOrderAndSkip(t *testing.T) {
	dbConn := setupReviewDB(t)
	env := seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")
	candidate := seedReviewUser(t, dbConn, "candidate@example.com")
	a := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)
	b := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)

	if _, err := AssignResponses(dbConn, 1, []uint{a.ID, b.ID}, "reviewer@example.com"); err != nil {
		t.Fatalf("AssignResponses failed: %v", err)
	}

	result, err := Next(dbConn, 1, reviewer.ID, 0, "en")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if result.Response.ID != a.ID {
		t.Errorf("expected lowest response id first, got %d", result.Response.ID)
	}
	if result.ReviewsRemainingCount != 2 {
		t.Errorf("expected 2 remaining, got %d", result.ReviewsRemainingCount)
	}

	result, err = Next(dbConn, 1, reviewer.ID, 1, "en")
	if err != nil {
		t.Fatalf("Next with skip failed: %v", err)
	}
	if result.Response.ID != b.ID {
		t.Errorf("skip=1 should land on the second entry, got %d", result.Response.ID)
	}

	// Skipping past the end clamps to the last entry.
	result, err = Next(dbConn, 1, reviewer.ID, 99, "en")
	if err != nil {
		t.Fatalf("Next with large skip failed: %v", err)
	}
	if result.Response.ID != b.ID {
		t.Errorf("expected clamp to the last entry, got %d", result.Response.ID)
	}
}

func TestNext_SubmittedReviewLeavesQueue(t *testing.T) {
	dbConn := setupReviewDB(t)
	env := seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")
	candidate := seedReviewUser(t, dbConn, "candidate@example.com")
	a := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)
	b := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)

	if _, err := AssignResponses(dbConn, 1, []uint{a.ID, b.ID}, "reviewer@example.com"); err != nil {
		t.Fatalf("AssignResponses failed: %v", err)
	}

	// A draft review keeps the response queued.
	if _, err := Save(dbConn, env.reviewForm.ID, a.ID, reviewer.ID, nil, false, "en"); err != nil {
		t.Fatalf("draft Save failed: %v", err)
	}
	result, err := Next(dbConn, 1, reviewer.ID, 0, "en")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if result.ReviewsRemainingCount != 2 {
		t.Errorf("draft must not leave the queue, remaining=%d", result.ReviewsRemainingCount)
	}

	// Submission removes it.
	if _, err := Save(dbConn, env.reviewForm.ID, a.ID, reviewer.ID, nil, true, "en"); err != nil {
		t.Fatalf("submit Save failed: %v", err)
	}
	result, err = Next(dbConn, 1, reviewer.ID, 0, "en")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if result.ReviewsRemainingCount != 1 || result.Response.ID != b.ID {
		t.Errorf("submitted review still queued: remaining=%d id=%d",
			result.ReviewsRemainingCount, result.Response.ID)
	}
}

func TestNext_DeactivatedAssignmentLeavesQueue(t *testing.T) {
	dbConn := setupReviewDB(t)
	env := seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")
	candidate := seedReviewUser(t, dbConn, "candidate@example.com")
	a := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)

	if _, err := AssignResponses(dbConn, 1, []uint{a.ID}, "reviewer@example.com"); err != nil {
		t.Fatalf("AssignResponses failed: %v", err)
	}
	if err := Deactivate(dbConn, a.ID, reviewer.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	result, err := Next(dbConn, 1, reviewer.ID, 0, "en")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if result.ReviewsRemainingCount != 0 || result.Response.ID != 0 {
		t.Errorf("deactivated assignment still queued: %+v", result)
	}
}

func TestNext_MultiChoiceAnswersShowLabels(t *testing.T) {
	dbConn := setupReviewDB(t)
	env := seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")
	candidate := seedReviewUser(t, dbConn, "candidate@example.com")
	resp := seedCandidateResponse(t, dbConn, env, candidate.ID, []response.AnswerInput{
		{QuestionID: env.nameQ.ID, Value: "Ada"},
		{QuestionID: env.choiceQ.ID, Value: "indaba-2017"},
	})

	if _, err := AssignResponses(dbConn, 1, []uint{resp.ID}, "reviewer@example.com"); err != nil {
		t.Fatalf("AssignResponses failed: %v", err)
	}
	result, err := Next(dbConn, 1, reviewer.ID, 0, "en")
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(result.Response.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(result.Response.Answers))
	}
	if result.Response.Answers[0].Value != "Ada" {
		t.Errorf("free-text answer passes through, got %q", result.Response.Answers[0].Value)
	}
	if result.Response.Answers[1].Value != "Yes, I attended the 2017 Indaba" {
		t.Errorf("multi-choice value not rendered as label, got %q", result.Response.Answers[1].Value)
	}
}

func TestNext_NoReviewFormIsNotFound(t *testing.T) {
	dbConn := setupReviewDB(t)
	_, err := Next(dbConn, 1, 1, 0, "en")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
