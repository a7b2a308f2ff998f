package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/database/testutil"
	"github.com/aschalew-star/tenderalert/internal/middleware"
	"github.com/aschalew-star/tenderalert/internal/models"
	"github.com/aschalew-star/tenderalert/internal/services"
)

// asRecipient injects the identity the auth middleware would have set.
func asRecipient(recipient services.Recipient) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxRecipientKey, recipient)
		c.Next()
	}
}

func setupNotificationHandler(t *testing.T) (*gorm.DB, *NotificationHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	svc, err := services.NewNotificationService(db)
	require.NoError(t, err)
	handler, err := NewNotificationHandler(svc)
	require.NoError(t, err)
	return db, handler
}

func seedUserNotification(t *testing.T, db *gorm.DB, id, userID string) {
	t.Helper()

	ownerID := userID
	require.NoError(t, db.FirstOrCreate(&models.User{
		BaseModel: models.BaseModel{ID: ownerID},
		Email:     ownerID + "@example.com",
		FirstName: "Test",
		Password:  "hashed",
		Role:      models.RoleStaff,
		IsActive:  true,
	}, "id = ?", ownerID).Error)
	require.NoError(t, db.Create(&models.Notification{
		BaseModel: models.BaseModel{ID: id},
		UserID:    &ownerID,
		Type:      models.NotificationTypeWelcome,
		Message:   "hello",
	}).Error)
}

func TestNotificationListScopedToCaller(t *testing.T) {
	db, handler := setupNotificationHandler(t)
	seedUserNotification(t, db, "note-mine", "user-1")
	seedUserNotification(t, db, "note-theirs", "user-2")

	r := gin.New()
	r.GET("/notifications", asRecipient(services.UserRecipient("user-1")), handler.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "note-mine", body.Data[0].ID)
}

func TestNotificationListRequiresIdentity(t *testing.T) {
	_, handler := setupNotificationHandler(t)

	r := gin.New()
	r.GET("/notifications", handler.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotificationMarkReadEnforcesOwnership(t *testing.T) {
	db, handler := setupNotificationHandler(t)
	seedUserNotification(t, db, "note-mine", "user-1")

	r := gin.New()
	r.POST("/notifications/:id/read", asRecipient(services.UserRecipient("user-2")), handler.MarkRead)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/note-mine/read", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var note models.Notification
	require.NoError(t, db.First(&note, "id = ?", "note-mine").Error)
	require.False(t, note.IsRead)
}

func TestNotificationMarkReadPersists(t *testing.T) {
	db, handler := setupNotificationHandler(t)
	seedUserNotification(t, db, "note-mine", "user-1")

	r := gin.New()
	r.POST("/notifications/:id/read", asRecipient(services.UserRecipient("user-1")), handler.MarkRead)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/note-mine/read", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var note models.Notification
	require.NoError(t, db.First(&note, "id = ?", "note-mine").Error)
	require.True(t, note.IsRead)
}
