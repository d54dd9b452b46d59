package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is the slice of the expense store the report subsystem reads.
// CRUD and the approval state machine live in their own service; reports
// only aggregate APPROVED rows by receipt date.
type Expense struct {
	ID              int             `gorm:"primary_key" json:"id"`
	UserId          int             `gorm:"index:idx_user_receipt_date;not null" json:"user_id" binding:"required"`
	ApprovalStatus  ApprovalStatus  `gorm:"size:30;index;not null" json:"approval_status"`
	Merchant        string          `gorm:"size:150" json:"merchant"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Category        string          `gorm:"size:50" json:"category"`
	ReceiptDate     time.Time       `gorm:"type:date;index:idx_user_receipt_date;not null" json:"receipt_date" binding:"required"`
	ReceiptImageUrl string          `gorm:"size:255" json:"receipt_image_url"`
	Description     string          `gorm:"size:255" json:"description"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
