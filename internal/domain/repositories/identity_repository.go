package repositories

import (
	"context"

	"github.com/google/uuid"
	"peerlend.backend/internal/domain/entities"
)

// IdentityRepository defines identity record data operations
type IdentityRepository interface {
	Create(ctx context.Context, identity *entities.Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Identity, error)
	GetByUsername(ctx context.Context, username string) (*entities.Identity, error)
	GetByCPF(ctx context.Context, cpf string) (*entities.Identity, error)
	UpdateKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) error
	UpdateRiskTier(ctx context.Context, id uuid.UUID, tier entities.RiskTier) error
	UpdateDocumentRefs(ctx context.Context, id uuid.UUID, frontRef, backRef, selfieRef string) error
}
