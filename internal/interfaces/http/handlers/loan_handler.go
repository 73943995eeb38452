package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"peerlend.backend/internal/domain/entities"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/interfaces/http/middleware"
	"peerlend.backend/internal/interfaces/http/response"
	"peerlend.backend/internal/usecases"
)

// LoanHandler handles loan request endpoints
type LoanHandler struct {
	loanUsecase *usecases.LoanUsecase
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanUsecase *usecases.LoanUsecase) *LoanHandler {
	return &LoanHandler{
		loanUsecase: loanUsecase,
	}
}

// RequestLoan opens a loan request for the authenticated borrower
// POST /api/v1/loans
func (h *LoanHandler) RequestLoan(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.RequestLoanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	loan, err := h.loanUsecase.RequestLoan(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"loan": loanView(loan)})
}

// ListAvailable lists loan requests open for funding
// GET /api/v1/loans/available
func (h *LoanHandler) ListAvailable(c *gin.Context) {
	offers, err := h.loanUsecase.ListAvailable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"loans": offers})
}

// Fund assigns the authenticated investor to an open loan
// POST /api/v1/loans/:id/fund
func (h *LoanHandler) Fund(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid loan id"))
		return
	}

	loan, err := h.loanUsecase.Fund(c.Request.Context(), loanID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"loan": loanView(loan)})
}

func loanView(loan *entities.Loan) gin.H {
	view := gin.H{
		"id":             loan.ID,
		"borrowerId":     loan.BorrowerID,
		"principal":      loan.Principal.StringFixed(2),
		"interestRate":   loan.InterestRate.StringFixed(2),
		"termMonths":     loan.TermMonths,
		"totalRepayment": loan.TotalRepayment.StringFixed(2),
		"installment":    loan.Installment.StringFixed(2),
		"status":         loan.Status,
		"createdAt":      loan.CreatedAt,
	}
	if loan.InvestorID != nil {
		view["investorId"] = *loan.InvestorID
	}
	return view
}
