package usecases

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"peerlend.backend/internal/domain/entities"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/domain/repositories"
	"peerlend.backend/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// LoanUsecase handles the loan request lifecycle
type LoanUsecase struct {
	loanRepo     repositories.LoanRepository
	identityRepo repositories.IdentityRepository
	scorer       *RiskScorer
	uow          repositories.UnitOfWork
	now          func() time.Time
}

// NewLoanUsecase creates a new loan usecase
func NewLoanUsecase(
	loanRepo repositories.LoanRepository,
	identityRepo repositories.IdentityRepository,
	scorer *RiskScorer,
	uow repositories.UnitOfWork,
) *LoanUsecase {
	return &LoanUsecase{
		loanRepo:     loanRepo,
		identityRepo: identityRepo,
		scorer:       scorer,
		uow:          uow,
		now:          time.Now,
	}
}

// RequestLoan opens a loan request for a verified borrower. The risk tier is
// recomputed at request time and the interest rate derived from it is frozen
// on the loan.
func (u *LoanUsecase) RequestLoan(ctx context.Context, borrowerID uuid.UUID, input *entities.RequestLoanInput) (*entities.Loan, error) {
	borrower, err := u.identityRepo.GetByID(ctx, borrowerID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.NotFound("borrower not found")
		}
		return nil, domainerrors.InternalError(err)
	}

	if borrower.KYCStatus != entities.KYCStatusApproved {
		return nil, domainerrors.NewAppError(http.StatusForbidden, "identity verification required", domainerrors.ErrKYCNotApproved)
	}

	principal, err := decimal.NewFromString(input.Principal)
	if err != nil || !principal.IsPositive() {
		return nil, domainerrors.BadRequest("principal must be a positive amount")
	}
	if input.TermMonths < 1 {
		return nil, domainerrors.BadRequest("term must be at least one month")
	}

	nowTime := u.now()
	tier, score := u.scorer.Score(borrower, nowTime)
	if err := u.identityRepo.UpdateRiskTier(ctx, borrowerID, tier); err != nil {
		logger.Error(ctx, "failed to persist risk tier", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	rate := InterestRateFor(tier)
	total := principal.Mul(decimal.NewFromInt(1).Add(rate.Div(hundred))).Round(2)
	installment := total.Div(decimal.NewFromInt(int64(input.TermMonths))).Round(2)

	loan := &entities.Loan{
		ID:             uuid.New(),
		BorrowerID:     borrowerID,
		Principal:      principal,
		InterestRate:   rate,
		TermMonths:     input.TermMonths,
		TotalRepayment: total,
		Installment:    installment,
		Status:         entities.LoanStatusAwaitingInvestor,
		CreatedAt:      nowTime,
	}

	if err := u.loanRepo.Create(ctx, loan); err != nil {
		logger.Error(ctx, "failed to create loan", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "loan requested",
		zap.String("loan_id", loan.ID.String()),
		zap.String("borrower_id", borrowerID.String()),
		zap.String("risk_tier", string(tier)),
		zap.Int("risk_score", score),
		zap.String("principal", principal.StringFixed(2)))

	return loan, nil
}

// ListAvailable returns the open loan requests as public offers
func (u *LoanUsecase) ListAvailable(ctx context.Context) ([]*entities.LoanOffer, error) {
	loans, err := u.loanRepo.ListByStatus(ctx, entities.LoanStatusAwaitingInvestor)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	offers := make([]*entities.LoanOffer, 0, len(loans))
	for _, loan := range loans {
		borrower, err := u.identityRepo.GetByID(ctx, loan.BorrowerID)
		if err != nil {
			logger.Warn(ctx, "skipping loan with unresolvable borrower",
				zap.String("loan_id", loan.ID.String()), zap.Error(err))
			continue
		}
		offers = append(offers, &entities.LoanOffer{
			ID:               loan.ID,
			BorrowerUsername: borrower.Username,
			BorrowerRiskTier: borrower.RiskTier,
			Principal:        loan.Principal.StringFixed(2),
			InterestRate:     loan.InterestRate.StringFixed(2),
			TermMonths:       loan.TermMonths,
			TotalRepayment:   loan.TotalRepayment.StringFixed(2),
		})
	}
	return offers, nil
}

// Fund assigns an investor to an open loan request. The status transition is
// a compare-and-set in the repository, so two concurrent investors cannot
// both win the same loan.
func (u *LoanUsecase) Fund(ctx context.Context, loanID, investorID uuid.UUID) (*entities.Loan, error) {
	investor, err := u.identityRepo.GetByID(ctx, investorID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.NotFound("investor not found")
		}
		return nil, domainerrors.InternalError(err)
	}

	if investor.KYCStatus != entities.KYCStatusApproved {
		return nil, domainerrors.NewAppError(http.StatusForbidden, "identity verification required", domainerrors.ErrKYCNotApproved)
	}

	loan, err := u.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.NotFound("loan not found")
		}
		return nil, domainerrors.InternalError(err)
	}

	if loan.BorrowerID == investorID {
		return nil, domainerrors.NewAppError(http.StatusBadRequest, "cannot fund your own loan", domainerrors.ErrSelfFunding)
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		return u.loanRepo.Fund(ctx, loanID, investorID)
	})
	if err != nil {
		if err == domainerrors.ErrLoanNotAvailable {
			return nil, domainerrors.NewAppError(http.StatusConflict, "loan is no longer available", domainerrors.ErrLoanNotAvailable)
		}
		logger.Error(ctx, "failed to fund loan", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	funded, err := u.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "loan funded",
		zap.String("loan_id", loanID.String()),
		zap.String("investor_id", investorID.String()))

	return funded, nil
}
