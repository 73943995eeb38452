package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"peerlend.backend/internal/domain/entities"
	"peerlend.backend/internal/interfaces/http/handlers"
	"peerlend.backend/internal/interfaces/http/middleware"
	"peerlend.backend/internal/usecases"
	"peerlend.backend/pkg/logger"
)

type kycHandlerMocks struct {
	identityRepo *MockIdentityRepository
	images       *MockImageSaver
	resolver     *MockImageResolver
	extractor    *MockTextExtractor
	faces        *MockFaceMatcher
	sanctions    *MockSanctionsChecker
}

func newKYCRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *kycHandlerMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Init("development")

	m := &kycHandlerMocks{
		identityRepo: new(MockIdentityRepository),
		images:       new(MockImageSaver),
		resolver:     new(MockImageResolver),
		extractor:    new(MockTextExtractor),
		faces:        new(MockFaceMatcher),
		sanctions:    new(MockSanctionsChecker),
	}
	kycUsecase := usecases.NewKYCUsecase(m.identityRepo, m.resolver, m.extractor, m.faces, m.sanctions, nil)
	handler := handlers.NewKYCHandler(kycUsecase, m.identityRepo, m.images)

	r := gin.New()
	authed := func(c *gin.Context) { c.Set(middleware.UserIDKey, userID) }
	r.POST("/api/v1/kyc/documents", authed, handler.UploadDocuments)
	r.POST("/api/v1/kyc/run", authed, handler.RunVerification)
	return r, m
}

func multipartUpload(t *testing.T, fields map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for field, content := range fields {
		fw, err := w.CreateFormFile(field, field+".jpg")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestKYCHandler_UploadDocuments(t *testing.T) {
	userID := uuid.New()
	r, m := newKYCRouter(t, userID)

	m.images.On("Save", "front", "front.jpg", mock.Anything).Return("front/a.jpg", nil)
	m.images.On("Save", "back", "back.jpg", mock.Anything).Return("back/b.jpg", nil)
	m.images.On("Save", "selfie", "selfie.jpg", mock.Anything).Return("selfie/c.jpg", nil)
	m.identityRepo.On("UpdateDocumentRefs", mock.Anything, userID, "front/a.jpg", "back/b.jpg", "selfie/c.jpg").Return(nil)

	body, contentType := multipartUpload(t, map[string][]byte{
		"front":  []byte("front-bytes"),
		"back":   []byte("back-bytes"),
		"selfie": []byte("selfie-bytes"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	m.identityRepo.AssertExpectations(t)
}

func TestKYCHandler_UploadDocuments_MissingField(t *testing.T) {
	userID := uuid.New()
	r, m := newKYCRouter(t, userID)

	body, contentType := multipartUpload(t, map[string][]byte{
		"front": []byte("front-bytes"),
		"back":  []byte("back-bytes"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "selfie")
	m.identityRepo.AssertNotCalled(t, "UpdateDocumentRefs",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestKYCHandler_RunVerification_Approved(t *testing.T) {
	userID := uuid.New()
	r, m := newKYCRouter(t, userID)

	identity := &entities.Identity{
		ID:               userID,
		Username:         "maria",
		CPF:              "52998224725",
		DocumentFrontRef: null.StringFrom("front/a.jpg"),
		DocumentBackRef:  null.StringFrom("back/b.jpg"),
		SelfieRef:        null.StringFrom("selfie/c.jpg"),
		KYCStatus:        entities.KYCStatusPending,
	}
	m.identityRepo.On("GetByID", mock.Anything, userID).Return(identity, nil)
	m.resolver.On("Resolve", "front/a.jpg").Return("/data/front.jpg", nil)
	m.resolver.On("Resolve", "back/b.jpg").Return("/data/back.jpg", nil)
	m.resolver.On("Resolve", "selfie/c.jpg").Return("/data/selfie.jpg", nil)
	m.extractor.On("ExtractIdentifier", mock.Anything, "/data/front.jpg").Return("52998224725", true)
	m.faces.On("Match", mock.Anything, "/data/front.jpg", "/data/selfie.jpg").Return(true)
	m.sanctions.On("IsRestricted", mock.Anything, "52998224725").Return(false)
	m.identityRepo.On("UpdateKYCStatus", mock.Anything, userID, entities.KYCStatusApproved).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/run", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result entities.KYCResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, entities.KYCResultApproved, result.Status)
	require.NotNil(t, result.Details)
	assert.True(t, result.Details.OCRMatch)
}

func TestKYCHandler_RunVerification_MissingDocuments(t *testing.T) {
	userID := uuid.New()
	r, m := newKYCRouter(t, userID)

	identity := &entities.Identity{ID: userID, Username: "maria", CPF: "52998224725"}
	m.identityRepo.On("GetByID", mock.Anything, userID).Return(identity, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/run", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result entities.KYCResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, entities.KYCResultFailed, result.Status)
	assert.Equal(t, "documents not submitted", result.Reason)
}
