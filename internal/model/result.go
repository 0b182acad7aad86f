package model

import "encoding/json"

// Result is the raw answer snapshot persisted once at final submission.
// Scoring against the answer key happens lazily when the result is
// displayed, not at submission time.
// swagger:model Result
type Result struct {
	UUIDBase
	UserID            uint            `gorm:"index;type:bigint unsigned" json:"userId"`
	User              *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TestID            uint            `gorm:"index;type:bigint unsigned" json:"testId"`
	Test              *Test           `gorm:"foreignKey:TestID" json:"test,omitempty"`
	Answers           json.RawMessage `gorm:"type:json" json:"answers"` // questionID -> stored answer value
	CompletedSections int             `gorm:"default:0" json:"completedSections"`
	TotalSections     int             `gorm:"default:0" json:"totalSections"`
	AutoSubmitted     bool            `gorm:"default:false" json:"autoSubmitted"` // forced by global timer expiry
}

func (Result) TableName() string {
	return "results"
}
