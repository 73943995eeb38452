package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "peerlend.backend/internal/domain/errors"
	"peerlend.backend/internal/domain/repositories"
	"peerlend.backend/internal/interfaces/http/middleware"
	"peerlend.backend/internal/interfaces/http/response"
	"peerlend.backend/internal/usecases"
)

// maxUploadBytes bounds a single document image upload
const maxUploadBytes = 10 << 20

// ImageSaver persists an uploaded image and returns its blob reference
type ImageSaver interface {
	Save(kind, originalName string, r io.Reader) (string, error)
}

// KYCHandler handles document upload and verification endpoints
type KYCHandler struct {
	kycUsecase   *usecases.KYCUsecase
	identityRepo repositories.IdentityRepository
	images       ImageSaver
}

// NewKYCHandler creates a new KYC handler
func NewKYCHandler(kycUsecase *usecases.KYCUsecase, identityRepo repositories.IdentityRepository, images ImageSaver) *KYCHandler {
	return &KYCHandler{
		kycUsecase:   kycUsecase,
		identityRepo: identityRepo,
		images:       images,
	}
}

// UploadDocuments receives the document front, back and selfie images
// POST /api/v1/kyc/documents (multipart/form-data: front, back, selfie)
func (h *KYCHandler) UploadDocuments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	refs := make(map[string]string, 3)
	for _, field := range []string{"front", "back", "selfie"} {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("missing file field: "+field))
			return
		}
		if fileHeader.Size > maxUploadBytes {
			response.Error(c, domainerrors.BadRequest("file too large: "+field))
			return
		}

		ref, err := h.saveUpload(field, fileHeader)
		if err != nil {
			response.Error(c, err)
			return
		}
		refs[field] = ref
	}

	if err := h.identityRepo.UpdateDocumentRefs(c.Request.Context(), userID, refs["front"], refs["back"], refs["selfie"]); err != nil {
		if err == domainerrors.ErrNotFound {
			response.Error(c, domainerrors.NotFound("user not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "documents received",
	})
}

// RunVerification executes the full verification pipeline for the caller
// POST /api/v1/kyc/run
func (h *KYCHandler) RunVerification(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	result := h.kycUsecase.Run(c.Request.Context(), userID)
	response.Success(c, http.StatusOK, result)
}

func (h *KYCHandler) saveUpload(kind string, fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", domainerrors.BadRequest("unreadable file: " + kind)
	}
	defer f.Close()

	ref, err := h.images.Save(kind, fileHeader.Filename, f)
	if err != nil {
		return "", domainerrors.InternalError(err)
	}
	return ref, nil
}
