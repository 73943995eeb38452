package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"peerlend.backend/internal/domain/entities"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/infrastructure/models"
)

// IdentityRepository implements identity record data operations
type IdentityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create creates a new identity record
func (r *IdentityRepository) Create(ctx context.Context, identity *entities.Identity) error {
	m := &models.Identity{
		ID:            identity.ID,
		Username:      identity.Username,
		Email:         identity.Email,
		PasswordHash:  identity.PasswordHash,
		CPF:           identity.CPF,
		DateOfBirth:   identity.DateOfBirth.Ptr(),
		MonthlyIncome: identity.MonthlyIncome.String(),
		KYCStatus:     string(identity.KYCStatus),
		RiskTier:      string(identity.RiskTier),
		CreatedAt:     identity.CreatedAt,
		UpdatedAt:     identity.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets an identity by ID
func (r *IdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Identity, error) {
	var m models.Identity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toIdentityEntity(&m), nil
}

// GetByUsername gets an identity by username
func (r *IdentityRepository) GetByUsername(ctx context.Context, username string) (*entities.Identity, error) {
	var m models.Identity
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toIdentityEntity(&m), nil
}

// GetByCPF gets an identity by its canonical digits-only identifier
func (r *IdentityRepository) GetByCPF(ctx context.Context, cpf string) (*entities.Identity, error) {
	var m models.Identity
	if err := r.db.WithContext(ctx).Where("cpf = ?", cpf).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toIdentityEntity(&m), nil
}

// UpdateKYCStatus atomically sets the verification status of a record
func (r *IdentityRepository) UpdateKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Identity{}).Where("id = ?", id).Updates(map[string]interface{}{
		"kyc_status": string(status),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateRiskTier sets the computed risk tier; recomputed on every loan request
func (r *IdentityRepository) UpdateRiskTier(ctx context.Context, id uuid.UUID, tier entities.RiskTier) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Identity{}).Where("id = ?", id).Updates(map[string]interface{}{
		"risk_tier":  string(tier),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateDocumentRefs stores the blob references of the three KYC images
func (r *IdentityRepository) UpdateDocumentRefs(ctx context.Context, id uuid.UUID, frontRef, backRef, selfieRef string) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Identity{}).Where("id = ?", id).Updates(map[string]interface{}{
		"document_front_ref": frontRef,
		"document_back_ref":  backRef,
		"selfie_ref":         selfieRef,
		"updated_at":         time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toIdentityEntity(m *models.Identity) *entities.Identity {
	income, err := decimal.NewFromString(m.MonthlyIncome)
	if err != nil {
		income = decimal.Zero
	}
	return &entities.Identity{
		ID:               m.ID,
		Username:         m.Username,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		CPF:              m.CPF,
		DateOfBirth:      null.TimeFromPtr(m.DateOfBirth),
		MonthlyIncome:    income,
		DocumentFrontRef: null.StringFromPtr(m.DocumentFrontRef),
		DocumentBackRef:  null.StringFromPtr(m.DocumentBackRef),
		SelfieRef:        null.StringFromPtr(m.SelfieRef),
		KYCStatus:        entities.KYCStatus(m.KYCStatus),
		RiskTier:         entities.RiskTier(m.RiskTier),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
