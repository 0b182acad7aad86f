package model

import "time"

// TestKind distinguishes full mock exams (global countdown, single attempt
// when paid) from practice material.
type TestKind string

const (
	KindMock     TestKind = "mock"
	KindPractice TestKind = "practice"
)

// SectionType is one of the four IELTS skill modules.
type SectionType string

const (
	SectionListening SectionType = "listening"
	SectionReading   SectionType = "reading"
	SectionWriting   SectionType = "writing"
	SectionSpeaking  SectionType = "speaking"
)

// swagger:model Test
type Test struct {
	BaseModel
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Kind        TestKind   `gorm:"type:enum('mock','practice');default:'practice'" json:"kind"`
	IsFree      bool       `gorm:"default:false" json:"isFree"`
	Price       float64    `gorm:"default:0" json:"price"`
	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"` // mock tests cannot be entered before this instant
	Sections    []Section  `gorm:"foreignKey:TestID" json:"sections,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// TotalMinutes is the Global Timer budget of a mock test: the sum of its
// section time limits.
func (t *Test) TotalMinutes() int {
	total := 0
	for _, s := range t.Sections {
		total += s.TimeLimit
	}
	return total
}

// swagger:model Section
type Section struct {
	BaseModel
	TestID       uint        `gorm:"index;type:bigint unsigned" json:"testId"`
	SectionType  SectionType `gorm:"type:enum('listening','reading','writing','speaking');not null" json:"sectionType"`
	TimeLimit    int         `gorm:"default:0" json:"timeLimit"` // Minutes
	OrderIndex   int         `gorm:"default:0" json:"orderIndex"`
	Instructions string      `gorm:"type:text" json:"instructions"`
}

func (Section) TableName() string {
	return "sections"
}

// Part groups several questions under shared passage/audio context. Passage
// text may embed raw image/table markup and [[n]] gap placeholders.
type Part struct {
	BaseModel
	SectionID     uint   `gorm:"index;type:bigint unsigned" json:"sectionId"`
	PartNumber    int    `gorm:"default:1" json:"partNumber"`
	Passage       string `gorm:"type:longtext" json:"passage"`
	AudioURL      string `gorm:"size:512" json:"audioUrl"`
	PdfURL        string `gorm:"size:512" json:"pdfUrl"`
	AudioDuration int    `gorm:"default:0" json:"audioDuration"` // seconds, probed at upload
}

func (Part) TableName() string {
	return "parts"
}
