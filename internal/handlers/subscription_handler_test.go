package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-go/internal/logging"
	"newsletter-go/internal/models"
	"newsletter-go/internal/service"
)

const formContentType = "application/x-www-form-urlencoded"

type fakeRepository struct {
	mu       sync.Mutex
	inserted []*models.Subscription
	err      error
}

func (f *fakeRepository) Insert(ctx context.Context, subscription *models.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, subscription)
	return nil
}

func (f *fakeRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func setupRouter(repo *fakeRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logging.NewLoggerWithOutput("error", &bytes.Buffer{})
	handler := NewSubscriptionHandler(service.NewSubscriptionService(repo, logger), logger)

	router := gin.New()
	router.GET("/health_check", HealthCheck)
	router.POST("/subscriptions", handler.Subscribe)
	return router
}

func post(router http.Handler, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(&fakeRepository{err: errors.New("store is down")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health_check", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestSubscribeReturns200ForValidFormData(t *testing.T) {
	repo := &fakeRepository{}
	router := setupRouter(repo)

	w := post(router, "/subscriptions", formContentType, "name=le%20guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())
	require.Equal(t, 1, repo.count())
	assert.Equal(t, "le guin", repo.inserted[0].Name)
	assert.Equal(t, "ursula_le_guin@gmail.com", repo.inserted[0].Email)
}

func TestSubscribeDecodesPlusAsSpace(t *testing.T) {
	repo := &fakeRepository{}
	router := setupRouter(repo)

	w := post(router, "/subscriptions", formContentType, "name=le+guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, repo.count())
	assert.Equal(t, "le guin", repo.inserted[0].Name)
}

func TestSubscribeReturns400WhenDataIsMissing(t *testing.T) {
	testCases := []struct {
		body        string
		description string
	}{
		{"name=le%20guin", "missing the email"},
		{"email=ursula_le_guin%40gmail.com", "missing the name"},
		{"", "missing both name and email"},
		{"name=&email=ursula_le_guin%40gmail.com", "empty name"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			repo := &fakeRepository{}
			router := setupRouter(repo)

			w := post(router, "/subscriptions", formContentType, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code,
				"The API did not fail with 400 Bad Request when the payload was %s", tc.description)
			assert.Zero(t, w.Body.Len())
			assert.Zero(t, repo.count())
		})
	}
}

func TestSubscribeReturns400ForUndecodableBodies(t *testing.T) {
	testCases := []struct {
		contentType string
		body        string
		description string
	}{
		{formContentType, "name=%zz&email=ursula_le_guin%40gmail.com", "malformed percent encoding"},
		{"application/json", `{"name":"le guin","email":"ursula_le_guin@gmail.com"}`, "json body"},
		{"", "name=le%20guin&email=ursula_le_guin%40gmail.com", "no content type"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			repo := &fakeRepository{}
			router := setupRouter(repo)

			w := post(router, "/subscriptions", tc.contentType, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, repo.count())
		})
	}
}

func TestSubscribeIgnoresQueryString(t *testing.T) {
	repo := &fakeRepository{}
	router := setupRouter(repo)

	w := post(router, "/subscriptions?name=le%20guin&email=ursula_le_guin%40gmail.com", formContentType, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, repo.count())
}

func TestSubscribeReturns500WhenStoreFails(t *testing.T) {
	repo := &fakeRepository{err: errors.New("connection refused")}
	router := setupRouter(repo)

	w := post(router, "/subscriptions", formContentType, "name=le%20guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, w.Body.Len())
}
