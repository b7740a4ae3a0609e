package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/universal-yoga/yoga-admin-api/internal/models"
	"github.com/universal-yoga/yoga-admin-api/internal/service"
	"github.com/universal-yoga/yoga-admin-api/internal/validation"
)

type classRepoMock struct {
	defs        []models.ClassDefinition
	def         *models.ClassDefinition
	err         error
	inserted    *models.ClassDefinition
	deletedID   int64
	resetCalled bool
	lastSearch  string
}

func (m *classRepoMock) Insert(ctx context.Context, def *models.ClassDefinition) error {
	if m.err != nil {
		return m.err
	}
	def.ID = 7
	m.inserted = def
	return nil
}

func (m *classRepoMock) GetAll(ctx context.Context) ([]models.ClassDefinition, error) {
	return m.defs, m.err
}

func (m *classRepoMock) GetByID(ctx context.Context, id int64) (*models.ClassDefinition, error) {
	return m.def, m.err
}

func (m *classRepoMock) SearchByInstructor(ctx context.Context, instructor string) ([]models.ClassDefinition, error) {
	m.lastSearch = instructor
	return m.defs, m.err
}

func (m *classRepoMock) Delete(ctx context.Context, id int64) error {
	m.deletedID = id
	return m.err
}

func (m *classRepoMock) ResetAll(ctx context.Context) error {
	m.resetCalled = true
	return m.err
}

func newClassHandler(t *testing.T, repo *classRepoMock) *ClassHandler {
	t.Helper()
	svc := service.NewClassService(repo, validation.NewValidator(), zap.NewNop())
	return NewClassHandler(svc)
}

func performRequest(t *testing.T, register func(*gin.Engine), method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	register(router)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClassHandlerList(t *testing.T) {
	repo := &classRepoMock{defs: []models.ClassDefinition{
		{ID: 1, DayOfWeek: "Monday", StartTime: "09:00", ClassType: "Flow Yoga", Instructor: "Ana"},
	}}
	h := newClassHandler(t, repo)

	w := performRequest(t, func(r *gin.Engine) { r.GET("/classes", h.List) }, http.MethodGet, "/classes", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []models.ClassDefinition `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Flow Yoga", envelope.Data[0].ClassType)
}

func TestClassHandlerCreate(t *testing.T) {
	repo := &classRepoMock{}
	h := newClassHandler(t, repo)

	payload := map[string]interface{}{
		"day_of_week":      "Tuesday",
		"start_time":       "18:30",
		"capacity":         12,
		"duration_minutes": 60,
		"price":            15.5,
		"class_type":       "Aerial Yoga",
		"instructor":       "Maya",
	}
	w := performRequest(t, func(r *gin.Engine) { r.POST("/classes", h.Create) }, http.MethodPost, "/classes", payload)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.inserted)
	assert.Equal(t, "Aerial Yoga", repo.inserted.ClassType)

	var envelope struct {
		Data models.ClassDefinition `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, int64(7), envelope.Data.ID)
}

func TestClassHandlerCreateRejectsBadDay(t *testing.T) {
	repo := &classRepoMock{}
	h := newClassHandler(t, repo)

	payload := map[string]interface{}{
		"day_of_week":      "Funday",
		"start_time":       "18:30",
		"capacity":         12,
		"duration_minutes": 60,
		"class_type":       "Flow Yoga",
		"instructor":       "Maya",
	}
	w := performRequest(t, func(r *gin.Engine) { r.POST("/classes", h.Create) }, http.MethodPost, "/classes", payload)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, repo.inserted)
}

func TestClassHandlerGetInvalidID(t *testing.T) {
	h := newClassHandler(t, &classRepoMock{})

	w := performRequest(t, func(r *gin.Engine) { r.GET("/classes/:id", h.Get) }, http.MethodGet, "/classes/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassHandlerDelete(t *testing.T) {
	repo := &classRepoMock{}
	h := newClassHandler(t, repo)

	w := performRequest(t, func(r *gin.Engine) { r.DELETE("/classes/:id", h.Delete) }, http.MethodDelete, "/classes/3", nil)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(3), repo.deletedID)
}

func TestClassHandlerReset(t *testing.T) {
	repo := &classRepoMock{}
	h := newClassHandler(t, repo)

	w := performRequest(t, func(r *gin.Engine) { r.POST("/classes/reset", h.Reset) }, http.MethodPost, "/classes/reset", nil)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, repo.resetCalled)
}

func TestClassHandlerSearchPassesQuery(t *testing.T) {
	repo := &classRepoMock{defs: []models.ClassDefinition{}}
	h := newClassHandler(t, repo)

	w := performRequest(t, func(r *gin.Engine) { r.GET("/classes/search", h.Search) }, http.MethodGet, "/classes/search?instructor=ana", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", repo.lastSearch)
}
