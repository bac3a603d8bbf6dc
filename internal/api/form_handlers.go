package api

import (
	"net/http"

	"applyflow/internal/appform"
	"applyflow/internal/db"

	"github.com/gin-gonic/gin"
)

// GET /application-form?event_id&language
// Public (authenticated) render of the event's application form.
func GetApplicationFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := queryUint(c, "event_id")
		if !ok {
			return
		}
		language := queryLanguage(c)

		form, err := appform.GetByEventID(db.DB, eventID)
		if err != nil {
			writeError(c, err)
			return
		}
		if form == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No application form found for this event"}})
			return
		}
		if !form.IsOpen {
			c.JSON(http.StatusForbidden, gin.H{"error": gin.H{"message": "Applications are closed for this event"}})
			return
		}
		if len(form.Sections) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No sections found for this form"}})
			return
		}
		hasQuestions := false
		for _, section := range form.Sections {
			if len(section.Questions) > 0 {
				hasQuestions = true
				break
			}
		}
		if !hasQuestions {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "No questions found for this form"}})
			return
		}

		fields, err := appform.FormFields(form, language)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, fields)
	}
}

type CreateFormRequest struct {
	EventID uint `json:"event_id"`
	appform.FormPayload
}

// POST /application-form  [event admin]
func CreateApplicationFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateFormRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.EventID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if !requireEventAdmin(c, req.EventID) {
			return
		}
		form, err := appform.CreateForm(db.DB, req.EventID, &req.FormPayload)
		if err != nil {
			writeError(c, err)
			return
		}
		fields, err := appform.FormFields(form, queryLanguage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, fields)
	}
}

type UpdateFormRequest struct {
	ID      uint `json:"id"`
	EventID uint `json:"event_id"`
	appform.FormPayload
}

// PUT /application-form  [event admin]
func UpdateApplicationFormHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateFormRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 || req.EventID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if !requireEventAdmin(c, req.EventID) {
			return
		}
		form, err := appform.UpdateForm(db.DB, req.ID, req.EventID, &req.FormPayload)
		if err != nil {
			writeError(c, err)
			return
		}
		fields, err := appform.FormFields(form, queryLanguage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, fields)
	}
}

// GET /questions?event_id&language  [event admin]
func ListQuestionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := queryUint(c, "event_id")
		if !ok {
			return
		}
		if !requireEventAdmin(c, eventID) {
			return
		}
		summaries, err := appform.QuestionsForEvent(db.DB, eventID, queryLanguage(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}
