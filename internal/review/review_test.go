package review

import (
	"testing"
	"time"

	"applyflow/internal/appform"
	"applyflow/internal/event"
	"applyflow/internal/response"
	"applyflow/internal/user"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReviewDB(t *testing.T) *gorm.DB {
	dbConn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&user.AppUser{},
		&event.Event{},
		&event.EventRole{},
		&appform.ApplicationForm{},
		&appform.Section{},
		&appform.SectionTranslation{},
		&appform.Question{},
		&appform.QuestionTranslation{},
		&response.Response{},
		&response.Answer{},
		&ReviewForm{},
		&ReviewConfiguration{},
		&ReviewQuestion{},
		&ReviewQuestionTranslation{},
		&ResponseReviewer{},
		&ReviewResponse{},
		&ReviewScore{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for _, table := range []string{
		"review_scores", "review_responses", "response_reviewers",
		"review_question_translations", "review_questions",
		"review_configurations", "review_forms",
		"answers", "responses",
		"question_translations", "questions", "section_translations", "sections",
		"application_forms", "event_roles", "events", "app_users",
	} {
		if err := dbConn.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
	return dbConn
}

type reviewEnv struct {
	form       *appform.ApplicationForm
	reviewForm *ReviewForm
	nameQ      appform.Question
	choiceQ    appform.Question
}

// seedReviewEnv builds an event-1 application form (one identifier
// question, one multi-choice question) plus a review form with the given
// review counts and two weighted review questions.
func seedReviewEnv(t *testing.T, dbConn *gorm.DB, required, optional int) *reviewEnv {
	payload := &appform.FormPayload{
		IsOpen:      true,
		Nominations: true,
		Sections: []appform.SectionPayload{
			{
				Order: 1,
				Name:  map[string]string{"en": "About"},
				Questions: []appform.QuestionPayload{
					{
						Order:    1,
						Type:     "short-text",
						Key:      "review-identifier",
						Headline: map[string]string{"en": "Name"},
					},
					{
						Order:    2,
						Type:     "multi-choice",
						Headline: map[string]string{"en": "Attended before?"},
						Options: map[string][]appform.Option{
							"en": {
								{Value: "indaba-2017", Label: "Yes, I attended the 2017 Indaba"},
								{Value: "none", Label: "No"},
							},
						},
					},
				},
			},
		},
	}
	form, err := appform.CreateForm(dbConn, 1, payload)
	if err != nil {
		t.Fatalf("failed to seed application form: %v", err)
	}

	reviewForm := ReviewForm{
		ApplicationFormID: form.ID,
		Deadline:          time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Active:            true,
	}
	if err := dbConn.Create(&reviewForm).Error; err != nil {
		t.Fatalf("failed to seed review form: %v", err)
	}
	cfg := ReviewConfiguration{
		ReviewFormID:       reviewForm.ID,
		NumReviewsRequired: required,
		NumOptionalReviews: optional,
	}
	if err := dbConn.Create(&cfg).Error; err != nil {
		t.Fatalf("failed to seed review configuration: %v", err)
	}

	questions := []ReviewQuestion{
		{ReviewFormID: reviewForm.ID, Type: "numeric", Order: 1, Weight: 2.0},
		{ReviewFormID: reviewForm.ID, Type: "numeric", Order: 2, Weight: 0.5},
		{ReviewFormID: reviewForm.ID, Type: "long-text", Order: 3, Weight: 0},
	}
	headlines := []string{"Technical merit", "Relevance", "Comments"}
	for i := range questions {
		if err := dbConn.Create(&questions[i]).Error; err != nil {
			t.Fatalf("failed to seed review question: %v", err)
		}
		qt := ReviewQuestionTranslation{
			ReviewQuestionID: questions[i].ID,
			Language:         "en",
			Headline:         headlines[i],
			Options:          datatypes.JSON(`[]`),
		}
		if err := dbConn.Create(&qt).Error; err != nil {
			t.Fatalf("failed to seed review question translation: %v", err)
		}
	}

	loaded, _, err := FormForEvent(dbConn, 1)
	if err != nil {
		t.Fatalf("failed to reload review form: %v", err)
	}
	return &reviewEnv{
		form:       form,
		reviewForm: loaded,
		nameQ:      form.Sections[0].Questions[0],
		choiceQ:    form.Sections[0].Questions[1],
	}
}

func seedReviewUser(t *testing.T, dbConn *gorm.DB, email string) user.AppUser {
	u := user.AppUser{Email: email, PasswordHash: "x"}
	if err := dbConn.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return u
}

func seedCandidateResponse(t *testing.T, dbConn *gorm.DB, env *reviewEnv, userID uint, answers []response.AnswerInput) *response.Response {
	resp, err := response.Create(dbConn, env.form.ID, userID, answers, true, "en")
	if err != nil {
		t.Fatalf("failed to seed response: %v", err)
	}
	return resp
}

// testDB bundles the usual history fixtures: one reviewer already
// holding the event role, one candidate.
type testDB struct {
	db        *gorm.DB
	env       *reviewEnv
	reviewer  user.AppUser
	candidate user.AppUser
}

func newHistoryFixture(t *testing.T) *testDB {
	dbConn := setupReviewDB(t)
	env := seedReviewEnv(t, dbConn, 3, 0)
	reviewer := seedReviewUser(t, dbConn, "reviewer@example.com")
	candidate := seedReviewUser(t, dbConn, "candidate@example.com")
	if err := event.GrantRole(dbConn, reviewer.ID, 1, event.RoleReviewer); err != nil {
		t.Fatalf("failed to grant reviewer role: %v", err)
	}
	return &testDB{db: dbConn, env: env, reviewer: reviewer, candidate: candidate}
}
