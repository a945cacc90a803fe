package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
	PaymentRefunded  = "refunded"
)

// Payment records a course purchase; the id doubles as the gateway tx_ref
type Payment struct {
	ID                    uuid.UUID      `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	StudentID             uint           `json:"student_id" gorm:"index;not null"`
	CourseID              uint           `json:"course_id" gorm:"index;not null"`
	Course                *Course        `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Amount                float64        `json:"amount" gorm:"not null"`
	Currency              string         `json:"currency" gorm:"size:3;default:'NGN'"`
	Provider              string         `json:"provider" gorm:"size:20"`
	Reference             *string        `json:"reference" gorm:"size:100;uniqueIndex"`
	ProviderTransactionID string         `json:"provider_transaction_id" gorm:"size:100"`
	CheckoutURL           string         `json:"checkout_url"`
	Status                string         `json:"status" gorm:"size:20;default:'pending';index"`
	PaymentMethod         string         `json:"payment_method" gorm:"size:50"`
	PaidAt                *time.Time     `json:"paid_at"`
	Metadata              datatypes.JSON `json:"metadata"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p Payment) IsSuccessful() bool {
	return p.Status == PaymentCompleted
}
