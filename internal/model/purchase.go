package model

import "time"

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)

// Purchase records paid access to a test. Payment processing itself lives
// outside this service; the engine only reads completed, unexpired rows.
// swagger:model Purchase
type Purchase struct {
	BaseModel
	UserID    uint           `gorm:"index;type:bigint unsigned" json:"userId"`
	TestID    uint           `gorm:"index;type:bigint unsigned" json:"testId"`
	Amount    float64        `gorm:"default:0" json:"amount"`
	Status    PurchaseStatus `gorm:"size:20;default:'pending'" json:"status"`
	Reference string         `gorm:"size:100" json:"reference"` // external payment reference
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

func (Purchase) TableName() string {
	return "purchases"
}
