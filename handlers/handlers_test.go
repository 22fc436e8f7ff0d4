package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"linklytics/auth"
	"linklytics/models"
	"linklytics/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.Manager
	links  *services.LinkService
	clicks *services.ClickService
}

// newTestEnv wires the full route table against an in-memory database,
// mirroring the router built in main.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Link{}, &models.ClickEvent{}))

	log := zap.NewNop()
	tokens := auth.NewManager("test-secret")
	linkService := services.NewLinkService(db, log)
	clickService := services.NewClickService(db, log)

	authHandler := NewAuthHandler(db, tokens, log)
	linkHandler := NewLinkHandler(linkService, clickService)
	redirectHandler := NewRedirectHandler(linkService, clickService)

	router := gin.New()
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	api := router.Group("/api")
	api.Use(tokens.Middleware())
	{
		api.GET("/auth/profile", authHandler.Profile)
		api.POST("/links", linkHandler.Create)
		api.GET("/links", linkHandler.List)
		api.GET("/links/:id/analytics", linkHandler.Analytics)
		api.DELETE("/links/:id", linkHandler.Delete)
		api.GET("/dashboard", linkHandler.Dashboard)
	}
	router.GET("/:code", redirectHandler.Redirect)

	return &testEnv{db: db, router: router, tokens: tokens, links: linkService, clicks: clickService}
}

// userToken creates a user and returns a valid bearer token for it.
func (e *testEnv) userToken(t *testing.T, username string) string {
	t.Helper()

	user := models.User{Username: username, Email: username + "@example.com", Password: "secret123"}
	require.NoError(t, e.db.Create(&user).Error)

	token, err := e.tokens.GenerateToken(&user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
