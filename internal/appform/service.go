package appform

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"applyflow/internal/apperr"
	"applyflow/internal/i18n"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GetByEventID loads the event's form with its full section/question
// tree and translations. Returns nil when no form exists.
func GetByEventID(db *gorm.DB, eventID uint) (*ApplicationForm, error) {
	var form ApplicationForm
	err := db.Preload("Sections.Translations").
		Preload("Sections.Questions.Translations").
		Where("event_id = ?", eventID).
		First(&form).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sortForm(&form)
	return &form, nil
}

// GetByID loads a form by primary key. Returns nil when absent.
func GetByID(db *gorm.DB, formID uint) (*ApplicationForm, error) {
	var form ApplicationForm
	err := db.Preload("Sections.Translations").
		Preload("Sections.Questions.Translations").
		First(&form, formID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sortForm(&form)
	return &form, nil
}

func sortForm(form *ApplicationForm) {
	sort.Slice(form.Sections, func(i, j int) bool {
		return form.Sections[i].Order < form.Sections[j].Order
	})
	for i := range form.Sections {
		qs := form.Sections[i].Questions
		sort.Slice(qs, func(a, b int) bool { return qs[a].Order < qs[b].Order })
	}
}

type QuestionFields struct {
	ID                  uint            `json:"id"`
	Type                string          `json:"type"`
	Description         string          `json:"description"`
	Headline            string          `json:"headline"`
	Order               int             `json:"order"`
	Options             json.RawMessage `json:"options"`
	Placeholder         string          `json:"placeholder"`
	ValidationRegex     string          `json:"validation_regex"`
	ValidationText      string          `json:"validation_text"`
	IsRequired          bool            `json:"is_required"`
	DependsOnQuestionID *uint           `json:"depends_on_question_id"`
	ShowForValues       json.RawMessage `json:"show_for_values"`
	Key                 string          `json:"key"`
}

type SectionFields struct {
	ID                  uint             `json:"id"`
	Name                string           `json:"name"`
	Description         string           `json:"description"`
	Order               int              `json:"order"`
	DependsOnQuestionID *uint            `json:"depends_on_question_id"`
	ShowForValues       json.RawMessage  `json:"show_for_values"`
	Questions           []QuestionFields `json:"questions"`
}

type FormFieldsResult struct {
	ID          uint            `json:"id"`
	EventID     uint            `json:"event_id"`
	IsOpen      bool            `json:"is_open"`
	Nominations bool            `json:"nominations"`
	Sections    []SectionFields `json:"sections"`
}

// FormFields renders the nested section/question tree at the requested
// language, interleaving untranslated attributes (order, type, key)
// with translated ones. Sections and questions come out in ascending
// order.
func FormFields(form *ApplicationForm, language string) (*FormFieldsResult, error) {
	result := &FormFieldsResult{
		ID:          form.ID,
		EventID:     form.EventID,
		IsOpen:      form.IsOpen,
		Nominations: form.Nominations,
		Sections:    []SectionFields{},
	}
	for _, section := range form.Sections {
		st, err := i18n.PickLogged(section.Translations, language, "section", section.ID)
		if err != nil {
			return nil, apperr.Unavailable("section has no translations", err)
		}
		sf := SectionFields{
			ID:                  section.ID,
			Name:                st.Name,
			Description:         st.Description,
			Order:               section.Order,
			DependsOnQuestionID: section.DependsOnQuestionID,
			ShowForValues:       json.RawMessage(st.ShowForValues),
			Questions:           []QuestionFields{},
		}
		for _, question := range section.Questions {
			qt, err := i18n.PickLogged(question.Translations, language, "question", question.ID)
			if err != nil {
				return nil, apperr.Unavailable("question has no translations", err)
			}
			sf.Questions = append(sf.Questions, QuestionFields{
				ID:                  question.ID,
				Type:                question.Type,
				Description:         qt.Description,
				Headline:            qt.Headline,
				Order:               question.Order,
				Options:             json.RawMessage(qt.Options),
				Placeholder:         qt.Placeholder,
				ValidationRegex:     qt.ValidationRegex,
				ValidationText:      qt.ValidationText,
				IsRequired:          question.IsRequired,
				DependsOnQuestionID: question.DependsOnQuestionID,
				ShowForValues:       json.RawMessage(qt.ShowForValues),
				Key:                 question.Key,
			})
		}
		result.Sections = append(result.Sections, sf)
	}
	return result, nil
}

// QuestionPayload is one question in a form create/update request.
// TempID is a client-supplied identifier other questions and sections
// may reference in DependsOn before the real id exists. Per-language
// maps are keyed by language code.
type QuestionPayload struct {
	ID              uint                  `json:"id,omitempty"`
	TempID          string                `json:"temp_id,omitempty"`
	Order           int                   `json:"order"`
	Type            string                `json:"type"`
	IsRequired      bool                  `json:"is_required"`
	Key             string                `json:"key,omitempty"`
	DependsOn       string                `json:"depends_on,omitempty"`
	Headline        map[string]string     `json:"headline"`
	Description     map[string]string     `json:"description"`
	Placeholder     map[string]string     `json:"placeholder"`
	ValidationRegex map[string]string     `json:"validation_regex"`
	ValidationText  map[string]string     `json:"validation_text"`
	Options         map[string][]Option   `json:"options"`
	ShowForValues   map[string][]string   `json:"show_for_values"`
}

type SectionPayload struct {
	ID            uint                `json:"id,omitempty"`
	Order         int                 `json:"order"`
	DependsOn     string              `json:"depends_on,omitempty"`
	Name          map[string]string   `json:"name"`
	Description   map[string]string   `json:"description"`
	ShowForValues map[string][]string `json:"show_for_values"`
	Questions     []QuestionPayload   `json:"questions"`
}

type FormPayload struct {
	IsOpen      bool             `json:"is_open"`
	Nominations bool             `json:"nominations"`
	Sections    []SectionPayload `json:"sections"`
}

func marshalJSONColumn(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// CreateForm builds the full form tree in one transaction. Dependencies
// between questions are materialized in two passes: all sections,
// questions and translations are inserted first while a map from
// client temp ids to assigned ids is recorded, then every DependsOn
// reference is resolved through that map. A reference may therefore
// point at a question that appears later in the payload.
func CreateForm(db *gorm.DB, eventID uint, payload *FormPayload) (*ApplicationForm, error) {
	existing, err := GetByEventID(db, eventID)
	if err != nil {
		return nil, apperr.Unavailable("could not check for existing form", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("an application form already exists for this event")
	}

	var formID uint
	err = db.Transaction(func(tx *gorm.DB) error {
		form := ApplicationForm{
			EventID:     eventID,
			IsOpen:      payload.IsOpen,
			Nominations: payload.Nominations,
		}
		if err := tx.Create(&form).Error; err != nil {
			return err
		}
		formID = form.ID

		questionIDs := map[string]uint{}
		type pendingDep struct {
			sectionID  uint
			questionID uint
			ref        string
		}
		var deps []pendingDep

		for _, sp := range payload.Sections {
			section := Section{ApplicationFormID: form.ID, Order: sp.Order}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
			if sp.DependsOn != "" {
				deps = append(deps, pendingDep{sectionID: section.ID, ref: sp.DependsOn})
			}
			if err := insertSectionTranslations(tx, section.ID, &sp); err != nil {
				return err
			}
			for _, qp := range sp.Questions {
				question := Question{
					ApplicationFormID: form.ID,
					SectionID:         section.ID,
					Order:             qp.Order,
					Type:              qp.Type,
					IsRequired:        qp.IsRequired,
					Key:               qp.Key,
				}
				if err := tx.Create(&question).Error; err != nil {
					return err
				}
				if qp.TempID != "" {
					questionIDs[qp.TempID] = question.ID
				}
				if qp.DependsOn != "" {
					deps = append(deps, pendingDep{questionID: question.ID, ref: qp.DependsOn})
				}
				if err := insertQuestionTranslations(tx, question.ID, &qp); err != nil {
					return err
				}
			}
		}

		// Second pass: every question now has an id, so dependency
		// references can be resolved.
		for _, dep := range deps {
			target, err := resolveQuestionRef(tx, form.ID, questionIDs, dep.ref)
			if err != nil {
				return err
			}
			if dep.sectionID != 0 {
				err = tx.Model(&Section{}).Where("id = ?", dep.sectionID).
					Update("depends_on_question_id", target).Error
			} else {
				err = tx.Model(&Question{}).Where("id = ?", dep.questionID).
					Update("depends_on_question_id", target).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUnavailable {
			return nil, err
		}
		return nil, apperr.Unavailable("could not create application form", err)
	}
	return GetByID(db, formID)
}

func insertSectionTranslations(tx *gorm.DB, sectionID uint, sp *SectionPayload) error {
	for language, name := range sp.Name {
		sfv, err := marshalJSONColumn(sp.ShowForValues[language])
		if err != nil {
			return err
		}
		st := SectionTranslation{
			SectionID:     sectionID,
			Language:      language,
			Name:          name,
			Description:   sp.Description[language],
			ShowForValues: sfv,
		}
		if err := tx.Create(&st).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertQuestionTranslations(tx *gorm.DB, questionID uint, qp *QuestionPayload) error {
	for language, headline := range qp.Headline {
		options, err := marshalJSONColumn(qp.Options[language])
		if err != nil {
			return err
		}
		sfv, err := marshalJSONColumn(qp.ShowForValues[language])
		if err != nil {
			return err
		}
		qt := QuestionTranslation{
			QuestionID:      questionID,
			Language:        language,
			Headline:        headline,
			Description:     qp.Description[language],
			Placeholder:     qp.Placeholder[language],
			ValidationRegex: qp.ValidationRegex[language],
			ValidationText:  qp.ValidationText[language],
			Options:         options,
			ShowForValues:   sfv,
		}
		if err := tx.Create(&qt).Error; err != nil {
			return err
		}
	}
	return nil
}

// resolveQuestionRef maps a DependsOn reference to a question id. The
// reference is either a temp id recorded during the first pass or the
// decimal id of a question already in the form.
func resolveQuestionRef(tx *gorm.DB, formID uint, tempIDs map[string]uint, ref string) (uint, error) {
	if id, ok := tempIDs[ref]; ok {
		return id, nil
	}
	n, err := strconv.ParseUint(ref, 10, 32)
	if err != nil {
		return 0, apperr.BadRequest(fmt.Sprintf("unknown question reference %q", ref))
	}
	var count int64
	if err := tx.Model(&Question{}).
		Where("id = ? AND application_form_id = ?", n, formID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, apperr.BadRequest(fmt.Sprintf("question %q is not part of this form", ref))
	}
	return uint(n), nil
}

// UpdateForm applies one coherent update algorithm across sections and
// questions: entries carrying an id are matched and updated (including
// translations), entries without one are inserted, and database rows
// absent from the payload are deleted. Dependency references go through
// the same two-pass backfill as CreateForm.
func UpdateForm(db *gorm.DB, formID, eventID uint, payload *FormPayload) (*ApplicationForm, error) {
	form, err := GetByID(db, formID)
	if err != nil {
		return nil, apperr.Unavailable("could not load form", err)
	}
	if form == nil {
		return nil, apperr.NotFound("application form not found")
	}
	if form.EventID != eventID {
		return nil, apperr.Conflict("form does not belong to this event")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ApplicationForm{}).Where("id = ?", form.ID).
			Updates(map[string]interface{}{
				"is_open":     payload.IsOpen,
				"nominations": payload.Nominations,
			}).Error; err != nil {
			return err
		}

		questionIDs := map[string]uint{}
		type pendingDep struct {
			sectionID  uint
			questionID uint
			ref        string
		}
		var deps []pendingDep

		keptSections := map[uint]bool{}
		keptQuestions := map[uint]bool{}

		for _, sp := range payload.Sections {
			sectionID := sp.ID
			if sectionID != 0 {
				res := tx.Model(&Section{}).
					Where("id = ? AND application_form_id = ?", sectionID, form.ID).
					Updates(map[string]interface{}{
						"sort_order":             sp.Order,
						"depends_on_question_id": nil,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return apperr.BadRequest(fmt.Sprintf("section %d is not part of this form", sectionID))
				}
				if err := upsertSectionTranslations(tx, sectionID, &sp); err != nil {
					return err
				}
			} else {
				section := Section{ApplicationFormID: form.ID, Order: sp.Order}
				if err := tx.Create(&section).Error; err != nil {
					return err
				}
				sectionID = section.ID
				if err := insertSectionTranslations(tx, sectionID, &sp); err != nil {
					return err
				}
			}
			keptSections[sectionID] = true
			if sp.DependsOn != "" {
				deps = append(deps, pendingDep{sectionID: sectionID, ref: sp.DependsOn})
			}

			for _, qp := range sp.Questions {
				questionID := qp.ID
				if questionID != 0 {
					res := tx.Model(&Question{}).
						Where("id = ? AND application_form_id = ?", questionID, form.ID).
						Updates(map[string]interface{}{
							"section_id":             sectionID,
							"sort_order":             qp.Order,
							"type":                   qp.Type,
							"is_required":            qp.IsRequired,
							"key":                    qp.Key,
							"depends_on_question_id": nil,
						})
					if res.Error != nil {
						return res.Error
					}
					if res.RowsAffected == 0 {
						return apperr.BadRequest(fmt.Sprintf("question %d is not part of this form", questionID))
					}
					if err := upsertQuestionTranslations(tx, questionID, &qp); err != nil {
						return err
					}
				} else {
					question := Question{
						ApplicationFormID: form.ID,
						SectionID:         sectionID,
						Order:             qp.Order,
						Type:              qp.Type,
						IsRequired:        qp.IsRequired,
						Key:               qp.Key,
					}
					if err := tx.Create(&question).Error; err != nil {
						return err
					}
					questionID = question.ID
					if err := insertQuestionTranslations(tx, questionID, &qp); err != nil {
						return err
					}
				}
				keptQuestions[questionID] = true
				if qp.TempID != "" {
					questionIDs[qp.TempID] = questionID
				}
				if qp.DependsOn != "" {
					deps = append(deps, pendingDep{questionID: questionID, ref: qp.DependsOn})
				}
			}
		}

		// Remove sections and questions dropped from the payload,
		// translations included.
		for _, section := range form.Sections {
			for _, question := range section.Questions {
				if keptQuestions[question.ID] {
					continue
				}
				if err := deleteQuestion(tx, question.ID); err != nil {
					return err
				}
			}
			if keptSections[section.ID] {
				continue
			}
			if err := tx.Where("section_id = ?", section.ID).
				Delete(&SectionTranslation{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&Section{}, section.ID).Error; err != nil {
				return err
			}
		}

		for _, dep := range deps {
			target, err := resolveQuestionRef(tx, form.ID, questionIDs, dep.ref)
			if err != nil {
				return err
			}
			if dep.sectionID != 0 {
				err = tx.Model(&Section{}).Where("id = ?", dep.sectionID).
					Update("depends_on_question_id", target).Error
			} else {
				err = tx.Model(&Question{}).Where("id = ?", dep.questionID).
					Update("depends_on_question_id", target).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUnavailable {
			return nil, err
		}
		return nil, apperr.Unavailable("could not update application form", err)
	}
	return GetByID(db, form.ID)
}

func deleteQuestion(tx *gorm.DB, questionID uint) error {
	if err := tx.Where("question_id = ?", questionID).
		Delete(&QuestionTranslation{}).Error; err != nil {
		return err
	}
	return tx.Delete(&Question{}, questionID).Error
}

func upsertSectionTranslations(tx *gorm.DB, sectionID uint, sp *SectionPayload) error {
	if err := tx.Where("section_id = ?", sectionID).
		Delete(&SectionTranslation{}).Error; err != nil {
		return err
	}
	return insertSectionTranslations(tx, sectionID, sp)
}

func upsertQuestionTranslations(tx *gorm.DB, questionID uint, qp *QuestionPayload) error {
	if err := tx.Where("question_id = ?", questionID).
		Delete(&QuestionTranslation{}).Error; err != nil {
		return err
	}
	return insertQuestionTranslations(tx, questionID, qp)
}

type QuestionSummary struct {
	QuestionID uint   `json:"question_id"`
	Headline   string `json:"headline"`
	Type       string `json:"type"`
}

// QuestionsForEvent lists the event's questions with headlines at the
// requested language, falling back to the default with a logged
// warning.
func QuestionsForEvent(db *gorm.DB, eventID uint, language string) ([]QuestionSummary, error) {
	form, err := GetByEventID(db, eventID)
	if err != nil {
		return nil, apperr.Unavailable("could not load form", err)
	}
	if form == nil {
		return nil, apperr.NotFound("no application form for this event")
	}
	summaries := []QuestionSummary{}
	for _, section := range form.Sections {
		for _, question := range section.Questions {
			qt, err := i18n.PickLogged(question.Translations, language, "question", question.ID)
			if err != nil {
				return nil, apperr.Unavailable("question has no translations", err)
			}
			summaries = append(summaries, QuestionSummary{
				QuestionID: question.ID,
				Headline:   qt.Headline,
				Type:       question.Type,
			})
		}
	}
	return summaries, nil
}
