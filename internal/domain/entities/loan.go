package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan request
type LoanStatus string

const (
	LoanStatusAwaitingInvestor LoanStatus = "AWAITING_INVESTOR"
	LoanStatusFunded           LoanStatus = "FUNDED"
	LoanStatusClosed           LoanStatus = "CLOSED"
)

// Loan represents a loan request between a borrower and an investor.
// InterestRate is assigned once at creation from the borrower's risk tier
// and is immutable afterwards.
type Loan struct {
	ID             uuid.UUID       `json:"id"`
	BorrowerID     uuid.UUID       `json:"borrowerId"`
	InvestorID     *uuid.UUID      `json:"investorId,omitempty"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	TermMonths     int             `json:"termMonths"`
	TotalRepayment decimal.Decimal `json:"totalRepayment"`
	Installment    decimal.Decimal `json:"installment"`
	Status         LoanStatus      `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// RequestLoanInput represents input for creating a loan request
type RequestLoanInput struct {
	Principal  string `json:"principal" binding:"required"`
	TermMonths int    `json:"termMonths" binding:"required,min=1"`
}

// LoanOffer is the public listing view of an open loan request
type LoanOffer struct {
	ID               uuid.UUID `json:"id"`
	BorrowerUsername string    `json:"borrowerUsername"`
	BorrowerRiskTier RiskTier  `json:"borrowerRiskTier"`
	Principal        string    `json:"principal"`
	InterestRate     string    `json:"interestRate"`
	TermMonths       int       `json:"termMonths"`
	TotalRepayment   string    `json:"totalRepayment"`
}
