package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"peerlend.backend/internal/domain/entities"
	"peerlend.backend/pkg/redis"
)

// MockIdentityRepository is a mock implementation of repositories.IdentityRepository
type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity *entities.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}

func (m *MockIdentityRepository) GetByUsername(ctx context.Context, username string) (*entities.Identity, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}

func (m *MockIdentityRepository) GetByCPF(ctx context.Context, cpf string) (*entities.Identity, error) {
	args := m.Called(ctx, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}

func (m *MockIdentityRepository) UpdateKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockIdentityRepository) UpdateRiskTier(ctx context.Context, id uuid.UUID, tier entities.RiskTier) error {
	args := m.Called(ctx, id, tier)
	return args.Error(0)
}

func (m *MockIdentityRepository) UpdateDocumentRefs(ctx context.Context, id uuid.UUID, frontRef, backRef, selfieRef string) error {
	args := m.Called(ctx, id, frontRef, backRef, selfieRef)
	return args.Error(0)
}

// MockLoanRepository is a mock implementation of repositories.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *entities.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status entities.LoanStatus) ([]*entities.Loan, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Loan), args.Error(1)
}

func (m *MockLoanRepository) Fund(ctx context.Context, id uuid.UUID, investorID uuid.UUID) error {
	args := m.Called(ctx, id, investorID)
	return args.Error(0)
}

// MockUnitOfWork executes the callback directly, without a transaction
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockTextExtractor is a mock implementation of usecases.TextExtractor
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractIdentifier(ctx context.Context, imagePath string) (string, bool) {
	args := m.Called(ctx, imagePath)
	return args.String(0), args.Bool(1)
}

// MockFaceMatcher is a mock implementation of usecases.FaceMatcher
type MockFaceMatcher struct {
	mock.Mock
}

func (m *MockFaceMatcher) Match(ctx context.Context, pathA, pathB string) bool {
	args := m.Called(ctx, pathA, pathB)
	return args.Bool(0)
}

// MockSanctionsChecker is a mock implementation of usecases.SanctionsChecker
type MockSanctionsChecker struct {
	mock.Mock
}

func (m *MockSanctionsChecker) IsRestricted(ctx context.Context, identifier string) bool {
	args := m.Called(ctx, identifier)
	return args.Bool(0)
}

// MockImageResolver is a mock implementation of usecases.ImageResolver
type MockImageResolver struct {
	mock.Mock
}

func (m *MockImageResolver) Resolve(ref string) (string, error) {
	args := m.Called(ref)
	return args.String(0), args.Error(1)
}

// MockSessionWriter is a mock implementation of usecases.SessionWriter
type MockSessionWriter struct {
	mock.Mock
}

func (m *MockSessionWriter) CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error {
	args := m.Called(ctx, sessionID, data, expiration)
	return args.Error(0)
}
