package repositories

import (
	"context"

	"github.com/google/uuid"
	"peerlend.backend/internal/domain/entities"
)

// LoanRepository defines loan request data operations
type LoanRepository interface {
	Create(ctx context.Context, loan *entities.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Loan, error)
	ListByStatus(ctx context.Context, status entities.LoanStatus) ([]*entities.Loan, error)
	// Fund performs a compare-and-set transition AWAITING_INVESTOR -> FUNDED.
	// Returns ErrLoanNotAvailable when the guard does not match, so a raced
	// second funding attempt loses deterministically.
	Fund(ctx context.Context, id uuid.UUID, investorID uuid.UUID) error
}
