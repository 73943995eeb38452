package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"peerlend.backend/internal/domain/entities"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/interfaces/http/handlers"
	"peerlend.backend/internal/interfaces/http/middleware"
	"peerlend.backend/internal/usecases"
	"peerlend.backend/pkg/crypto"
	"peerlend.backend/pkg/jwt"
	"peerlend.backend/pkg/logger"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *MockIdentityRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init("development")

	repo := new(MockIdentityRepository)
	jwtService := jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	authUsecase := usecases.NewAuthUsecase(repo, jwtService, nil, time.Hour)
	handler := handlers.NewAuthHandler(authUsecase, repo)

	r := gin.New()
	r.POST("/api/v1/auth/register", handler.Register)
	r.POST("/api/v1/auth/login", handler.Login)
	return r, repo
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Register(t *testing.T) {
	r, repo := newAuthRouter(t)

	repo.On("GetByUsername", mock.Anything, "maria").Return(nil, domainerrors.ErrNotFound)
	repo.On("GetByCPF", mock.Anything, "52998224725").Return(nil, domainerrors.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Identity")).Return(nil)

	rec := postJSON(r, "/api/v1/auth/register", gin.H{
		"username":      "maria",
		"email":         "maria@example.com",
		"password":      "s3cret-pass",
		"cpf":           "529.982.247-25",
		"monthlyIncome": "4500.00",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "52998224725", body["user"]["cpf"])
	assert.Equal(t, "PENDING", body["user"]["kycStatus"])
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := postJSON(r, "/api/v1/auth/register", gin.H{"username": "x"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Register_InvalidCPF(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := postJSON(r, "/api/v1/auth/register", gin.H{
		"username":      "maria",
		"email":         "maria@example.com",
		"password":      "s3cret-pass",
		"cpf":           "111.111.111-11",
		"monthlyIncome": "4500.00",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid CPF")
}

func TestAuthHandler_Login(t *testing.T) {
	r, repo := newAuthRouter(t)

	hash, err := crypto.HashPassword("s3cret-pass")
	require.NoError(t, err)
	identity := &entities.Identity{
		ID:            uuid.New(),
		Username:      "maria",
		PasswordHash:  hash,
		MonthlyIncome: decimal.NewFromInt(4500),
		KYCStatus:     entities.KYCStatusApproved,
	}
	repo.On("GetByUsername", mock.Anything, "maria").Return(identity, nil)

	rec := postJSON(r, "/api/v1/auth/login", gin.H{
		"username": "maria",
		"password": "s3cret-pass",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	r, repo := newAuthRouter(t)

	repo.On("GetByUsername", mock.Anything, "maria").Return(nil, domainerrors.ErrNotFound)

	rec := postJSON(r, "/api/v1/auth/login", gin.H{
		"username": "maria",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Init("development")

	repo := new(MockIdentityRepository)
	jwtService := jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	authUsecase := usecases.NewAuthUsecase(repo, jwtService, nil, time.Hour)
	handler := handlers.NewAuthHandler(authUsecase, repo)

	userID := uuid.New()
	identity := &entities.Identity{
		ID:            userID,
		Username:      "maria",
		MonthlyIncome: decimal.NewFromInt(4500),
		KYCStatus:     entities.KYCStatusApproved,
		RiskTier:      entities.RiskTierMedium,
	}
	repo.On("GetByID", mock.Anything, userID).Return(identity, nil)

	r := gin.New()
	r.GET("/api/v1/users/me", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	}, handler.Me)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maria")
	assert.Contains(t, rec.Body.String(), "MEDIUM")
}
