package certificate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T, loader AssetLoader, s3 *MockS3Client, opts PublishOptions) (*gin.Engine, *recordingPages) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pages := &recordingPages{}
	engine := NewEngine(pages, loader, testPaths, zap.NewNop())
	service := NewService(engine, nil, opts, zap.NewNop())
	if s3 != nil {
		service = NewService(engine, s3, opts, zap.NewNop())
	}

	router := gin.New()
	NewHandler(service).RegisterRoutes(router.Group("/api/v1"))
	return router, pages
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerListTemplates(t *testing.T) {
	router, _ := setupRouter(t, allAssets(), nil, PublishOptions{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []templateInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, TemplateFullBleed, got[2].Name)
	assert.True(t, got[2].LogoPlaced)
	assert.False(t, got[0].LogoPlaced)
}

func TestHandlerRender(t *testing.T) {
	router, pages := setupRouter(t, allAssets(), nil, PublishOptions{})

	w := postJSON(t, router, "/api/v1/certificates", sampleRequest())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
	assert.Empty(t, w.Header().Get(WarningsHeader))
	assert.Len(t, pages.pages, 1)
}

func TestHandlerRenderReportsWarnings(t *testing.T) {
	router, _ := setupRouter(t, &stubLoader{}, nil, PublishOptions{})
	req := sampleRequest()
	req.SignatureImage = ""

	w := postJSON(t, router, "/api/v1/certificates", req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get(WarningsHeader), ErrAssetUnavailable.Error())
}

func TestHandlerRenderInvalidRequest(t *testing.T) {
	router, _ := setupRouter(t, allAssets(), nil, PublishOptions{})
	req := sampleRequest()
	req.Template = "gold-foil"

	w := postJSON(t, router, "/api/v1/certificates", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", strings.NewReader("{"))
	bad.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerPublish(t *testing.T) {
	s3 := new(MockS3Client)
	keyed := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "issued/bordered-inset/") && strings.HasSuffix(key, ".pdf")
	})
	s3.On("Upload", mock.Anything, "certs", keyed, mock.Anything).Return(nil)
	s3.On("GetPresignedURL", mock.Anything, "certs", keyed, time.Hour).
		Return("https://certs.s3.amazonaws.com/signed", nil)

	router, _ := setupRouter(t, allAssets(), s3, PublishOptions{Bucket: "certs", Prefix: "issued", PresignExpiry: time.Hour})

	w := postJSON(t, router, "/api/v1/certificates/publish", sampleRequest())

	require.Equal(t, http.StatusCreated, w.Code)
	var pub Publication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pub))
	assert.Equal(t, "certs", pub.Bucket)
	assert.Equal(t, "https://certs.s3.amazonaws.com/signed", pub.URL)
	assert.Equal(t, "issued/bordered-inset/"+pub.ID.String()+".pdf", pub.Key)
	s3.AssertExpectations(t)
}

func TestHandlerPublishDisabled(t *testing.T) {
	router, _ := setupRouter(t, allAssets(), nil, PublishOptions{})

	w := postJSON(t, router, "/api/v1/certificates/publish", sampleRequest())

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServicePublishUploadFailure(t *testing.T) {
	s3 := new(MockS3Client)
	s3.On("Upload", mock.Anything, "certs", mock.Anything, mock.Anything).Return(errors.New("access denied"))

	engine := NewEngine(&recordingPages{}, allAssets(), testPaths, zap.NewNop())
	service := NewService(engine, s3, PublishOptions{Bucket: "certs"}, nil)

	pub, err := service.Publish(context.Background(), sampleRequest())

	assert.Nil(t, pub)
	assert.ErrorContains(t, err, "access denied")
	s3.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
