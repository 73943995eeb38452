package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"peerlend.backend/internal/domain/entities"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/domain/repositories"
	"peerlend.backend/internal/interfaces/http/middleware"
	"peerlend.backend/internal/interfaces/http/response"
	"peerlend.backend/internal/usecases"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase  *usecases.AuthUsecase
	identityRepo repositories.IdentityRepository
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase *usecases.AuthUsecase, identityRepo repositories.IdentityRepository) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		identityRepo: identityRepo,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	identity, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user": identityView(identity),
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{
		"accessToken":  authResponse.AccessToken,
		"refreshToken": authResponse.RefreshToken,
		"user":         identityView(authResponse.Identity),
	}
	if authResponse.SessionID != "" {
		body["sessionId"] = authResponse.SessionID
	}

	response.Success(c, http.StatusOK, body)
}

// Me returns the authenticated user's profile
// GET /api/v1/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	identity, err := h.identityRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			response.Error(c, domainerrors.NotFound("user not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": identityView(identity)})
}

func identityView(identity *entities.Identity) gin.H {
	view := gin.H{
		"id":            identity.ID,
		"username":      identity.Username,
		"email":         identity.Email,
		"cpf":           identity.CPF,
		"monthlyIncome": identity.MonthlyIncome.StringFixed(2),
		"kycStatus":     identity.KYCStatus,
		"riskTier":      identity.RiskTier,
		"hasDocuments":  identity.HasAllDocuments(),
	}
	if identity.DateOfBirth.Valid {
		view["dateOfBirth"] = identity.DateOfBirth.Time.Format("2006-01-02")
	}
	return view
}
