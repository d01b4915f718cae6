package model

import "time"

// XPTransaction is an append-only ledger entry. Rows are never updated or
// deleted; the student's xp column is the running sum of their entries.
// Amount may be negative for penalties.
type XPTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID string    `gorm:"type:uuid;not null;index" json:"student_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for XPTransaction
func (XPTransaction) TableName() string {
	return "xp_transactions"
}
