package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/database/testutil"
	"github.com/aschalew-star/tenderalert/internal/models"
	"github.com/aschalew-star/tenderalert/internal/services"
	"github.com/aschalew-star/tenderalert/pkg/mail"
)

func setupTenderHandler(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	require.NoError(t, db.Create(&models.Category{
		BaseModel: models.BaseModel{ID: "construction"},
		Name:      "Construction",
	}).Error)
	require.NoError(t, db.Create(&models.Subcategory{
		BaseModel:  models.BaseModel{ID: "road-works"},
		Name:       "Road Works",
		CategoryID: "construction",
	}).Error)
	require.NoError(t, db.Create(&models.Region{
		BaseModel: models.BaseModel{ID: "oromia"},
		Name:      "Oromia",
	}).Error)

	dispatcher, err := services.NewDispatcherService(db, mail.Discard{}, services.WithRetryBackoff(0))
	require.NoError(t, err)
	pending, err := services.NewPendingService(db, dispatcher)
	require.NoError(t, err)
	matcher, err := services.NewMatcherService(db, dispatcher, pending)
	require.NoError(t, err)
	tenders, err := services.NewTenderService(db)
	require.NoError(t, err)

	handler, err := NewTenderHandler(tenders, matcher)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/tenders", handler.Create)
	r.GET("/tenders", handler.List)
	return db, r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTenderCreateRejectsInvalidPayload(t *testing.T) {
	db, r := setupTenderHandler(t)

	w := postJSON(t, r, "/tenders", gin.H{
		"category_id":    "construction",
		"subcategory_id": "road-works",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "title is required")

	req := httptest.NewRequest(http.MethodPost, "/tenders", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid JSON payload")

	var count int64
	require.NoError(t, db.Model(&models.Tender{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestTenderCreateRejectsUnknownCatalog(t *testing.T) {
	_, r := setupTenderHandler(t)

	w := postJSON(t, r, "/tenders", gin.H{
		"title":          "Bridge rehabilitation",
		"category_id":    "construction",
		"subcategory_id": "no-such-subcategory",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "unknown subcategory")

	w = postJSON(t, r, "/tenders", gin.H{
		"title":          "Bridge rehabilitation",
		"category_id":    "construction",
		"subcategory_id": "road-works",
		"region_id":      "no-such-region",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "unknown region")
}

func TestTenderCreatePersistsTender(t *testing.T) {
	db, r := setupTenderHandler(t)

	w := postJSON(t, r, "/tenders", gin.H{
		"title":          "Bridge rehabilitation",
		"description":    "Rehabilitate the Awash bridge",
		"category_id":    "construction",
		"subcategory_id": "road-works",
		"region_id":      "oromia",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Success bool          `json:"success"`
		Data    models.Tender `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "Bridge rehabilitation", body.Data.Title)
	require.NotNil(t, body.Data.Category)

	var count int64
	require.NoError(t, db.Model(&models.Tender{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestTenderListPaginates(t *testing.T) {
	db, r := setupTenderHandler(t)

	for _, title := range []string{"First", "Second", "Third"} {
		require.NoError(t, db.Create(&models.Tender{
			Title:         title,
			CategoryID:    "construction",
			SubcategoryID: "road-works",
		}).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/tenders?page=2&per_page=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.Tender `json:"data"`
		Meta struct {
			Page    int   `json:"page"`
			PerPage int   `json:"per_page"`
			Total   int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, 2, body.Meta.Page)
	require.EqualValues(t, 3, body.Meta.Total)
}
