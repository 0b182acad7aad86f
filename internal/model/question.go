package model

import "encoding/json"

// Question belongs to one section and usually one part. QuestionText may
// embed [[n]] placeholders marking blank positions; CorrectAnswer is a
// comma-separated list whose segments map 1:1 onto the blanks in appearance
// order. For multi-select questions CorrectAnswer is the accepted letter set.
// swagger:model Question
type Question struct {
	BaseModel
	SectionID     uint            `gorm:"index;type:bigint unsigned" json:"sectionId"`
	PartID        *uint           `gorm:"index;type:bigint unsigned" json:"partId,omitempty"`
	QuestionType  string          `gorm:"size:50;not null" json:"questionType"` // multiple_choice, gap_fill, true_false_ng, ...
	QuestionText  string          `gorm:"type:text;not null" json:"questionText"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"` // ordered []string, nullable
	CorrectAnswer string          `gorm:"type:text" json:"-"`
	Points        float64         `gorm:"default:1" json:"points"`
	Explanation   string          `gorm:"type:text" json:"-"`
	OrderIndex    int             `gorm:"default:0" json:"orderIndex"`
}

func (Question) TableName() string {
	return "questions"
}
