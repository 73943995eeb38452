package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// KYCStatus represents the verification status of an identity
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusApproved KYCStatus = "APPROVED"
	KYCStatusRejected KYCStatus = "REJECTED"
)

// RiskTier represents the computed risk classification of an identity.
// Higher risk score maps to a LOWER tier name: the interest-rate table
// depends on this inversion, so it is preserved as-is.
type RiskTier string

const (
	RiskTierLow      RiskTier = "LOW"
	RiskTierMedium   RiskTier = "MEDIUM"
	RiskTierHigh     RiskTier = "HIGH"
	RiskTierUnscored RiskTier = "UNSCORED"
)

// Identity represents a platform user subject to KYC verification
type Identity struct {
	ID               uuid.UUID       `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	PasswordHash     string          `json:"-"`
	CPF              string          `json:"cpf"` // canonical digits-only form
	DateOfBirth      null.Time       `json:"dateOfBirth,omitempty"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	DocumentFrontRef null.String     `json:"-"`
	DocumentBackRef  null.String     `json:"-"`
	SelfieRef        null.String     `json:"-"`
	KYCStatus        KYCStatus       `json:"kycStatus"`
	RiskTier         RiskTier        `json:"riskTier"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// HasAllDocuments reports whether front, back and selfie were all uploaded
func (i *Identity) HasAllDocuments() bool {
	return i.DocumentFrontRef.Valid && i.DocumentBackRef.Valid && i.SelfieRef.Valid
}

// RegisterInput represents input for registering an identity
type RegisterInput struct {
	Username      string `json:"username" binding:"required,min=3,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	CPF           string `json:"cpf" binding:"required"`
	DateOfBirth   string `json:"dateOfBirth"` // YYYY-MM-DD, optional
	MonthlyIncome string `json:"monthlyIncome" binding:"required"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	UseSession bool   `json:"useSession"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	SessionID    string    `json:"sessionId,omitempty"`
	Identity     *Identity `json:"user"`
}
