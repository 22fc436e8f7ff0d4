package services

import (
	"fmt"
	"testing"

	"linklytics/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a per-test in-memory database. The shared-cache DSN keeps the
// pool's connections pointed at the same database so the background click
// worker sees the same data as the test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Link{}, &models.ClickEvent{}))
	return db
}

func testLinkService(t *testing.T) *LinkService {
	t.Helper()
	return NewLinkService(testDB(t), zap.NewNop())
}
