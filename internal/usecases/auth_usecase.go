package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"peerlend.backend/internal/domain/entities"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/domain/repositories"
	"peerlend.backend/pkg/cpf"
	"peerlend.backend/pkg/crypto"
	"peerlend.backend/pkg/jwt"
	"peerlend.backend/pkg/logger"
	"peerlend.backend/pkg/redis"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateOfBirthLayout = "2006-01-02"

// SessionWriter persists login sessions. Optional; a nil writer disables
// session-based auth and clients fall back to bearer tokens only.
type SessionWriter interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
}

// AuthUsecase handles registration and login
type AuthUsecase struct {
	identityRepo repositories.IdentityRepository
	jwtService   *jwt.JWTService
	sessions     SessionWriter
	sessionTTL   time.Duration
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(identityRepo repositories.IdentityRepository, jwtService *jwt.JWTService, sessions SessionWriter, sessionTTL time.Duration) *AuthUsecase {
	return &AuthUsecase{
		identityRepo: identityRepo,
		jwtService:   jwtService,
		sessions:     sessions,
		sessionTTL:   sessionTTL,
	}
}

// Register validates the national identifier, checks uniqueness and creates
// the identity record in PENDING verification state.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.Identity, error) {
	if !cpf.Valid(input.CPF) {
		return nil, domainerrors.NewAppError(400, "invalid CPF", domainerrors.ErrInvalidCPF)
	}
	normalizedCPF := cpf.Normalize(input.CPF)

	if _, err := u.identityRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, domainerrors.Conflict("username already taken")
	} else if err != domainerrors.ErrNotFound {
		logger.Error(ctx, "failed to check username", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	if _, err := u.identityRepo.GetByCPF(ctx, normalizedCPF); err == nil {
		return nil, domainerrors.Conflict("CPF already registered")
	} else if err != domainerrors.ErrNotFound {
		logger.Error(ctx, "failed to check CPF", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	income, err := decimal.NewFromString(input.MonthlyIncome)
	if err != nil || income.IsNegative() {
		return nil, domainerrors.BadRequest("monthly income must be a non-negative amount")
	}

	identity := &entities.Identity{
		ID:            uuid.New(),
		Username:      input.Username,
		Email:         input.Email,
		CPF:           normalizedCPF,
		MonthlyIncome: income,
		KYCStatus:     entities.KYCStatusPending,
		RiskTier:      entities.RiskTierUnscored,
	}

	if input.DateOfBirth != "" {
		dob, err := time.Parse(dateOfBirthLayout, input.DateOfBirth)
		if err != nil {
			return nil, domainerrors.BadRequest("date of birth must be YYYY-MM-DD")
		}
		identity.DateOfBirth.SetValid(dob)
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		logger.Error(ctx, "failed to hash password", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}
	identity.PasswordHash = hash

	if err := u.identityRepo.Create(ctx, identity); err != nil {
		logger.Error(ctx, "failed to create identity", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "identity registered",
		zap.String("identity_id", identity.ID.String()),
		zap.String("username", identity.Username))

	return identity, nil
}

// Login verifies credentials and issues a token pair, optionally backed by a
// server-side session.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	identity, err := u.identityRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.NewAppError(401, "invalid credentials", domainerrors.ErrInvalidCredentials)
		}
		logger.Error(ctx, "failed to fetch identity", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	if !crypto.CheckPassword(input.Password, identity.PasswordHash) {
		return nil, domainerrors.NewAppError(401, "invalid credentials", domainerrors.ErrInvalidCredentials)
	}

	pair, err := u.jwtService.GenerateTokenPair(identity.ID, identity.Username)
	if err != nil {
		logger.Error(ctx, "failed to generate tokens", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	resp := &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Identity:     identity,
	}

	if input.UseSession && u.sessions != nil {
		sessionID, err := crypto.GenerateSessionID()
		if err != nil {
			logger.Error(ctx, "failed to generate session id", zap.Error(err))
			return nil, domainerrors.InternalError(err)
		}
		data := &redis.SessionData{
			UserID:       identity.ID.String(),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}
		if err := u.sessions.CreateSession(ctx, sessionID, data, u.sessionTTL); err != nil {
			logger.Error(ctx, "failed to store session", zap.Error(err))
			return nil, domainerrors.InternalError(err)
		}
		resp.SessionID = sessionID
	}

	logger.Info(ctx, "identity logged in", zap.String("identity_id", identity.ID.String()))
	return resp, nil
}
