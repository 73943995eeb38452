package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"peerlend.backend/internal/domain/entities"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/infrastructure/models"
)

// LoanRepository implements loan request data operations
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// Create creates a new loan request
func (r *LoanRepository) Create(ctx context.Context, loan *entities.Loan) error {
	m := &models.Loan{
		ID:             loan.ID,
		BorrowerID:     loan.BorrowerID,
		InvestorID:     loan.InvestorID,
		Principal:      loan.Principal.StringFixed(2),
		InterestRate:   loan.InterestRate.StringFixed(2),
		TermMonths:     loan.TermMonths,
		TotalRepayment: loan.TotalRepayment.StringFixed(2),
		Installment:    loan.Installment.StringFixed(2),
		Status:         string(loan.Status),
		CreatedAt:      loan.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// GetByID gets a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Loan, error) {
	var m models.Loan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toLoanEntity(&m), nil
}

// ListByStatus lists loans in a given status, newest first
func (r *LoanRepository) ListByStatus(ctx context.Context, status entities.LoanStatus) ([]*entities.Loan, error) {
	var loanModels []models.Loan
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Find(&loanModels).Error
	if err != nil {
		return nil, err
	}

	var loans []*entities.Loan
	for _, m := range loanModels {
		model := m
		loans = append(loans, toLoanEntity(&model))
	}
	return loans, nil
}

// Fund transitions a loan AWAITING_INVESTOR -> FUNDED. The status guard sits
// in the WHERE clause so concurrent funding attempts cannot both succeed.
func (r *LoanRepository) Fund(ctx context.Context, id uuid.UUID, investorID uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ?", id, string(entities.LoanStatusAwaitingInvestor)).
		Updates(map[string]interface{}{
			"investor_id": investorID,
			"status":      string(entities.LoanStatusFunded),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrLoanNotAvailable
	}
	return nil
}

func toLoanEntity(m *models.Loan) *entities.Loan {
	return &entities.Loan{
		ID:             m.ID,
		BorrowerID:     m.BorrowerID,
		InvestorID:     m.InvestorID,
		Principal:      mustDecimal(m.Principal),
		InterestRate:   mustDecimal(m.InterestRate),
		TermMonths:     m.TermMonths,
		TotalRepayment: mustDecimal(m.TotalRepayment),
		Installment:    mustDecimal(m.Installment),
		Status:         entities.LoanStatus(m.Status),
		CreatedAt:      m.CreatedAt,
	}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
