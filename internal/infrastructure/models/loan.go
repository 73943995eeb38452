package models

import (
	"time"

	"github.com/google/uuid"
)

type Loan struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	BorrowerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	InvestorID     *uuid.UUID `gorm:"type:uuid;index"`
	Principal      string     `gorm:"type:decimal(12,2);not null"`
	InterestRate   string     `gorm:"type:decimal(5,2);not null"`
	TermMonths     int        `gorm:"not null"`
	TotalRepayment string     `gorm:"type:decimal(12,2);not null"`
	Installment    string     `gorm:"type:decimal(12,2);not null"`
	Status         string     `gorm:"type:varchar(20);not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Loan) TableName() string {
	return "loans"
}
