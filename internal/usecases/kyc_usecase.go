package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"peerlend.backend/internal/domain/entities"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/domain/repositories"
	"peerlend.backend/pkg/logger"
	"peerlend.backend/pkg/metrics"
)

// TextExtractor produces a candidate identifier from a document image.
// A miss is an expected outcome, reported via the boolean, never an error.
type TextExtractor interface {
	ExtractIdentifier(ctx context.Context, imagePath string) (string, bool)
}

// FaceMatcher decides whether two images depict the same person
type FaceMatcher interface {
	Match(ctx context.Context, pathA, pathB string) bool
}

// SanctionsChecker reports whether an identifier is on a restrictive list.
// Implementations fail open: checker outages must never block verification.
type SanctionsChecker interface {
	IsRestricted(ctx context.Context, identifier string) bool
}

// ImageResolver maps an opaque blob reference to a readable image path
type ImageResolver interface {
	Resolve(ref string) (string, error)
}

// KYCUsecase orchestrates the verification pipeline: OCR cross-check, face
// match and sanctions lookup combined with a strict AND.
type KYCUsecase struct {
	identityRepo repositories.IdentityRepository
	images       ImageResolver
	extractor    TextExtractor
	faces        FaceMatcher
	sanctions    SanctionsChecker
	metrics      *metrics.Metrics
}

// NewKYCUsecase creates a new KYC usecase
func NewKYCUsecase(
	identityRepo repositories.IdentityRepository,
	images ImageResolver,
	extractor TextExtractor,
	faces FaceMatcher,
	sanctions SanctionsChecker,
	m *metrics.Metrics,
) *KYCUsecase {
	return &KYCUsecase{
		identityRepo: identityRepo,
		images:       images,
		extractor:    extractor,
		faces:        faces,
		sanctions:    sanctions,
		metrics:      m,
	}
}

// Run executes one full verification for the identity record. Every
// invocation returns a definite result; unexpected failures surface as a
// FAILED result with the stored status untouched, never as a raised error.
func (u *KYCUsecase) Run(ctx context.Context, identityID uuid.UUID) (result *entities.KYCResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "KYC pipeline panic", zap.Any("panic", r))
			result = &entities.KYCResult{
				Status: entities.KYCResultFailed,
				Reason: fmt.Sprintf("internal error: %v", r),
			}
			u.metrics.IncrementOutcome(string(entities.KYCResultFailed))
		}
	}()

	identity, err := u.identityRepo.GetByID(ctx, identityID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return u.failed(ctx, "user not found")
		}
		return u.failed(ctx, err.Error())
	}

	if !identity.HasAllDocuments() {
		return u.failed(ctx, "documents not submitted")
	}

	frontPath, err := u.images.Resolve(identity.DocumentFrontRef.String)
	if err != nil {
		return u.failed(ctx, err.Error())
	}
	backPath, err := u.images.Resolve(identity.DocumentBackRef.String)
	if err != nil {
		return u.failed(ctx, err.Error())
	}
	selfiePath, err := u.images.Resolve(identity.SelfieRef.String)
	if err != nil {
		return u.failed(ctx, err.Error())
	}

	logger.Info(ctx, "starting KYC pipeline",
		zap.String("identity_id", identityID.String()),
		zap.String("username", identity.Username))

	signals := &entities.KYCSignals{
		OCRMatch:       u.checkOCR(ctx, identity, frontPath, backPath),
		FaceMatch:      u.checkFace(ctx, frontPath, selfiePath),
		NoRestrictions: u.checkSanctions(ctx, identity.CPF),
	}

	status := entities.KYCStatusRejected
	if signals.OCRMatch && signals.FaceMatch && signals.NoRestrictions {
		status = entities.KYCStatusApproved
	}

	if err := u.identityRepo.UpdateKYCStatus(ctx, identityID, status); err != nil {
		return u.failed(ctx, err.Error())
	}

	logger.Info(ctx, "KYC pipeline finished",
		zap.String("identity_id", identityID.String()),
		zap.String("status", string(status)),
		zap.Bool("ocr_match", signals.OCRMatch),
		zap.Bool("face_match", signals.FaceMatch),
		zap.Bool("no_restrictions", signals.NoRestrictions))

	u.metrics.IncrementOutcome(string(status))
	return &entities.KYCResult{
		Status:  entities.KYCResultStatus(status),
		Details: signals,
	}
}

// checkOCR extracts the identifier from the document front, retrying once on
// the back, and compares it to the stored identifier in normalized form.
func (u *KYCUsecase) checkOCR(ctx context.Context, identity *entities.Identity, frontPath, backPath string) bool {
	start := time.Now()
	defer func() { u.metrics.ObserveSignalLatency("ocr", time.Since(start)) }()

	extracted, found := u.extractor.ExtractIdentifier(ctx, frontPath)
	if !found {
		logger.Debug(ctx, "identifier not found on document front, trying back")
		extracted, found = u.extractor.ExtractIdentifier(ctx, backPath)
	}
	return found && extracted == identity.CPF
}

func (u *KYCUsecase) checkFace(ctx context.Context, frontPath, selfiePath string) bool {
	start := time.Now()
	defer func() { u.metrics.ObserveSignalLatency("face", time.Since(start)) }()

	return u.faces.Match(ctx, frontPath, selfiePath)
}

func (u *KYCUsecase) checkSanctions(ctx context.Context, identifier string) bool {
	start := time.Now()
	defer func() { u.metrics.ObserveSignalLatency("sanctions", time.Since(start)) }()

	return !u.sanctions.IsRestricted(ctx, identifier)
}

func (u *KYCUsecase) failed(ctx context.Context, reason string) *entities.KYCResult {
	logger.Warn(ctx, "KYC pipeline failed", zap.String("reason", reason))
	u.metrics.IncrementOutcome(string(entities.KYCResultFailed))
	return &entities.KYCResult{
		Status: entities.KYCResultFailed,
		Reason: reason,
	}
}
