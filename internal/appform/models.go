package appform

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ApplicationForm is the questionnaire candidates fill in for an event.
// At most one form exists per event; Nominations allows a user to hold
// more than one response (re-application cycles).
type ApplicationForm struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     uint      `gorm:"uniqueIndex;not null" json:"event_id"`
	IsOpen      bool      `gorm:"not null;default:true" json:"is_open"`
	Nominations bool      `gorm:"not null;default:false" json:"nominations"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Sections    []Section `gorm:"foreignKey:ApplicationFormID" json:"-"`
}

// Section groups questions within a form. DependsOnQuestionID makes the
// whole section conditional on another question's answer being in the
// translation's ShowForValues set.
type Section struct {
	ID                  uint                 `gorm:"primaryKey" json:"id"`
	ApplicationFormID   uint                 `gorm:"not null;index" json:"application_form_id"`
	Order               int                  `gorm:"column:sort_order;not null" json:"order"`
	DependsOnQuestionID *uint                `json:"depends_on_question_id"`
	Translations        []SectionTranslation `gorm:"foreignKey:SectionID" json:"-"`
	Questions           []Question           `gorm:"foreignKey:SectionID" json:"-"`
}

type SectionTranslation struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SectionID     uint           `gorm:"not null;uniqueIndex:idx_section_lang" json:"section_id"`
	Language      string         `gorm:"size:8;not null;uniqueIndex:idx_section_lang" json:"language"`
	Name          string         `gorm:"size:255" json:"name"`
	Description   string         `json:"description"`
	ShowForValues datatypes.JSON `json:"show_for_values"`
}

type Question struct {
	ID                  uint                  `gorm:"primaryKey" json:"id"`
	ApplicationFormID   uint                  `gorm:"not null;index" json:"application_form_id"`
	SectionID           uint                  `gorm:"not null;index" json:"section_id"`
	Order               int                   `gorm:"column:sort_order;not null" json:"order"`
	Type                string                `gorm:"size:32;not null" json:"type"`
	IsRequired          bool                  `gorm:"not null;default:true" json:"is_required"`
	Key                 string                `gorm:"size:64" json:"key"`
	DependsOnQuestionID *uint                 `json:"depends_on_question_id"`
	Translations        []QuestionTranslation `gorm:"foreignKey:QuestionID" json:"-"`
}

type QuestionTranslation struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	QuestionID      uint           `gorm:"not null;uniqueIndex:idx_question_lang" json:"question_id"`
	Language        string         `gorm:"size:8;not null;uniqueIndex:idx_question_lang" json:"language"`
	Headline        string         `gorm:"size:255" json:"headline"`
	Description     string         `json:"description"`
	Placeholder     string         `gorm:"size:255" json:"placeholder"`
	ValidationRegex string         `gorm:"size:255" json:"validation_regex"`
	ValidationText  string         `gorm:"size:255" json:"validation_text"`
	Options         datatypes.JSON `json:"options"`
	ShowForValues   datatypes.JSON `json:"show_for_values"`
}

// Option is one entry of a multi-choice question's Options column.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (t SectionTranslation) TranslationLanguage() string  { return t.Language }
func (t QuestionTranslation) TranslationLanguage() string { return t.Language }

// OptionLabel maps a stored multi-choice value to its display label.
// Values without a matching option (or questions without options) come
// back unchanged.
func (t QuestionTranslation) OptionLabel(value string) string {
	if len(t.Options) == 0 {
		return value
	}
	var options []Option
	if err := json.Unmarshal(t.Options, &options); err != nil {
		return value
	}
	for _, option := range options {
		if option.Value == value {
			return option.Label
		}
	}
	return value
}
