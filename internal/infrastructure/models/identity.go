package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Identity struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Username         string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Email            string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash     string    `gorm:"type:varchar(255);not null"`
	CPF              string    `gorm:"column:cpf;type:varchar(11);uniqueIndex;not null"`
	DateOfBirth      *time.Time
	MonthlyIncome    string `gorm:"type:decimal(12,2);not null;default:'0'"`
	DocumentFrontRef *string `gorm:"type:varchar(512)"`
	DocumentBackRef  *string `gorm:"type:varchar(512)"`
	SelfieRef        *string `gorm:"type:varchar(512)"`
	KYCStatus        string  `gorm:"column:kyc_status;type:varchar(20);not null;default:'PENDING'"`
	RiskTier         string  `gorm:"type:varchar(20);not null;default:'UNSCORED'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Identity) TableName() string {
	return "identities"
}
