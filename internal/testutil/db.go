// Package testutil provides shared helpers for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aipress24/kyc-engine/internal/models"
)

// DB opens a private in-memory sqlite database with the full schema
// migrated. The shared cache keeps the database alive across the pooled
// connections of one test.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.KYCProfile{},
		&models.Organisation{},
		&models.Invitation{},
		&models.Taxonomy{},
		&models.ZipCodeTown{},
		&models.TmpBlob{},
		&models.SystemLog{},
	))
	return db
}
