package review

import (
	"testing"

	"applyflow/internal/response"
)

func TestList_IdentifierAnswersAndProgress(t *testing.T) {
	dbConn := setupReviewDB(t)
	env := seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")
	candidate := seedReviewUser(t, dbConn, "candidate@example.com")

	a := seedCandidateResponse(t, dbConn, env, candidate.ID, []response.AnswerInput{
		{QuestionID: env.nameQ.ID, Value: "Ada"},
		{QuestionID: env.choiceQ.ID, Value: "indaba-2017"},
	})
	b := seedCandidateResponse(t, dbConn, env, candidate.ID, []response.AnswerInput{
		{QuestionID: env.nameQ.ID, Value: "Grace"},
	})

	if _, err := AssignResponses(dbConn, 1, []uint{a.ID, b.ID}, "reviewer@example.com"); err != nil {
		t.Fatalf("AssignResponses failed: %v", err)
	}

	// Review the first response completely.
	q1 := env.reviewForm.ReviewQuestions[0]
	if _, err := Save(dbConn, env.reviewForm.ID, a.ID, reviewer.ID,
		[]ScoreInput{{ReviewQuestionID: q1.ID, Value: "4"}}, true, "en"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := List(dbConn, 1, reviewer.ID, "en")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.ResponseID != a.ID {
		t.Errorf("entries not ordered by response id: %d", first.ResponseID)
	}
	// Only the identifier question's answer shows, the multi-choice one
	// carries no identifier key.
	if len(first.Information) != 1 || first.Information[0].Value != "Ada" {
		t.Errorf("unexpected identifying information: %+v", first.Information)
	}
	if first.Information[0].Headline != "Name" {
		t.Errorf("identifier headline missing: %+v", first.Information[0])
	}
	if !first.Started || first.Submitted == nil {
		t.Errorf("completed review not reflected: started=%v submitted=%v", first.Started, first.Submitted)
	}
	if first.TotalScore != 8.0 {
		t.Errorf("expected total score 8.0 (4 x weight 2.0), got %v", first.TotalScore)
	}

	second := entries[1]
	if second.Started || second.Submitted != nil {
		t.Errorf("untouched review flagged as started: %+v", second)
	}
	if second.TotalScore != 0.0 {
		t.Errorf("expected zero score for an unstarted review, got %v", second.TotalScore)
	}
}

func TestList_ExcludesDeactivatedAndWithdrawn(t *testing.T) {
	dbConn := setupReviewDB(t)
	env := seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")
	candidate := seedReviewUser(t, dbConn, "candidate@example.com")

	keep := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)
	deactivated := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)
	withdrawn := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)

	if _, err := AssignResponses(dbConn, 1, []uint{keep.ID, deactivated.ID, withdrawn.ID}, "reviewer@example.com"); err != nil {
		t.Fatalf("AssignResponses failed: %v", err)
	}
	if err := Deactivate(dbConn, deactivated.ID, reviewer.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if err := response.Withdraw(dbConn, withdrawn.ID, candidate.ID); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	entries, err := List(dbConn, 1, reviewer.ID, "en")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ResponseID != keep.ID {
		t.Errorf("expected only the live assignment, got %+v", entries)
	}
}

func TestReviewerSummaries(t *testing.T) {
	dbConn := setupReviewDB(t)
	env := seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")
	candidate := seedReviewUser(t, dbConn, "candidate@example.com")
	resp := seedCandidateResponse(t, dbConn, env, candidate.ID, nil)

	if _, err := AssignResponses(dbConn, 1, []uint{resp.ID}, "reviewer@example.com"); err != nil {
		t.Fatalf("AssignResponses failed: %v", err)
	}
	if _, err := Save(dbConn, env.reviewForm.ID, resp.ID, reviewer.ID, nil, true, "en"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	summaries, err := ReviewerSummaries(dbConn, []uint{resp.ID})
	if err != nil {
		t.Fatalf("ReviewerSummaries failed: %v", err)
	}
	entry := summaries[resp.ID]
	if len(entry) != 1 {
		t.Fatalf("expected 1 reviewer, got %d", len(entry))
	}
	if entry[0].Email != "reviewer@example.com" || !entry[0].Active || !entry[0].ReviewSubmitted {
		t.Errorf("unexpected summary: %+v", entry[0])
	}

	empty, err := ReviewerSummaries(dbConn, nil)
	if err != nil {
		t.Fatalf("ReviewerSummaries with no ids failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected an empty map, got %+v", empty)
	}
}
